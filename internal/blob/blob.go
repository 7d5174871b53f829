// Package blob receives uploaded document bytes and stores them somewhere
// addressable. Transactions only ever see the resulting locator.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// Object describes a stored upload.
type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a unique, date-partitioned key that keeps the original extension.
func NewKey(transactionID, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))

	return fmt.Sprintf("transactions/%s/%d/%02d/%s%s",
		transactionID, now.Year(), now.Month(), uuid.NewString(), ext)
}

// sanitizeKey rejects keys that could escape the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}

	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}

	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key traversal %q", key)
	}

	return clean, nil
}
