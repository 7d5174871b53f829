package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/dealdesk/internal/auth"
	"github.com/MrJamesThe3rd/dealdesk/internal/blob"
	"github.com/MrJamesThe3rd/dealdesk/internal/config"
	"github.com/MrJamesThe3rd/dealdesk/internal/database"
	dealHttp "github.com/MrJamesThe3rd/dealdesk/internal/http"
	authHandler "github.com/MrJamesThe3rd/dealdesk/internal/http/auth"
	"github.com/MrJamesThe3rd/dealdesk/internal/http/health"
	txHandler "github.com/MrJamesThe3rd/dealdesk/internal/http/transaction"
	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
	"github.com/MrJamesThe3rd/dealdesk/internal/transaction/memstore"
	txStore "github.com/MrJamesThe3rd/dealdesk/internal/transaction/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)

	var (
		transactionService = transaction.NewService(repo)

		healthH      = health.NewHandler(cfg.App.Name, cfg.App.Version)
		authH        = authHandler.NewHandler(tokens)
		transactionH = txHandler.NewHandler(transactionService, blobs, cfg.Blob.MaxUploadBytes)
	)

	opts := dealHttp.Options{
		AllowedOrigins: []string{cfg.Server.FrontendURL},
		Timeout:        cfg.Server.Timeout,
		MaxInFlight:    cfg.Server.MaxInFlight,
	}
	if blob.Driver(cfg.Blob.Driver) == blob.DriverFilesystem {
		opts.UploadsDir = cfg.Blob.FSRoot
		opts.UploadsPrefix = cfg.Blob.PublicPrefix
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           dealHttp.New(opts, tokens, healthH, authH, transactionH),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", server.Addr, "storage", cfg.StorageDriver, "blob", cfg.Blob.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openRepository(ctx context.Context, cfg *config.Config) (transaction.Repository, func(), error) {
	switch cfg.StorageDriver {
	case "memory":
		slog.Warn("using in-memory storage; data is lost on restart")
		return memstore.New(), func() {}, nil
	case "postgres":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}

		return txStore.New(db), closer(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func closer(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch blob.Driver(cfg.Blob.Driver) {
	case blob.DriverFilesystem:
		return blob.NewFSStore(cfg.Blob.FSRoot, cfg.Blob.PublicPrefix)
	case blob.DriverS3:
		return blob.NewS3Store(ctx, blob.S3Config{
			Bucket:    cfg.Blob.S3Bucket,
			Region:    cfg.Blob.S3Region,
			Endpoint:  cfg.Blob.S3Endpoint,
			PathStyle: cfg.Blob.S3PathStyle,
			AccessKey: cfg.Blob.S3AccessKey,
			SecretKey: cfg.Blob.S3SecretKey,
			PublicURL: cfg.Blob.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Log.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
