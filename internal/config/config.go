package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name    string `envconfig:"APP_NAME" default:"dealdesk"`
		Version string `envconfig:"APP_VERSION" default:"1.0.0"`
		Port    int    `envconfig:"PORT" default:"3003"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"dealdesk"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	// StorageDriver selects "postgres" or "memory".
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		MaxInFlight int           `envconfig:"SERVER_MAX_IN_FLIGHT" default:"100"`
		FrontendURL string        `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	}

	JWT struct {
		Secret string        `envconfig:"JWT_SECRET" required:"true"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	Blob struct {
		Driver       string `envconfig:"BLOB_DRIVER" default:"fs"`
		FSRoot       string `envconfig:"BLOB_FS_ROOT" default:"./uploads"`
		PublicPrefix string `envconfig:"BLOB_PUBLIC_PREFIX" default:"/uploads/"`

		S3Bucket    string `envconfig:"BLOB_S3_BUCKET"`
		S3Region    string `envconfig:"BLOB_S3_REGION" default:"us-east-1"`
		S3Endpoint  string `envconfig:"BLOB_S3_ENDPOINT"`
		S3PathStyle bool   `envconfig:"BLOB_S3_PATH_STYLE" default:"false"`
		S3AccessKey string `envconfig:"BLOB_S3_ACCESS_KEY"`
		S3SecretKey string `envconfig:"BLOB_S3_SECRET_KEY"`
		S3PublicURL string `envconfig:"BLOB_S3_PUBLIC_URL"`

		MaxUploadBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
	}

	// Desk is the author attached to comments posted from the terminal UI.
	Desk struct {
		User  string `envconfig:"DESK_USER" default:"Transaction Desk"`
		Email string `envconfig:"DESK_EMAIL" default:"desk@example.com"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// envFiles are read in order; values already in the environment win.
var envFiles = []string{".env.local", ".env.development", ".env"}

func Load() (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
