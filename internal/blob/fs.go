package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSStore writes uploads under a local directory and addresses them by a
// public URL prefix that a static file server is expected to expose.
type FSStore struct {
	root   string
	prefix string
}

func NewFSStore(root, publicPrefix string) (*FSStore, error) {
	if root == "" {
		root = "./uploads"
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	if !strings.HasSuffix(publicPrefix, "/") {
		publicPrefix += "/"
	}

	return &FSStore{root: root, prefix: publicPrefix}, nil
}

func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (Object, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Object{}, err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("creating blob dir: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("creating blob %s: %w", k, err)
	}

	n, copyErr := io.Copy(f, readerWithContext(ctx, r))
	closeErr := f.Close()

	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst)
		return Object{}, fmt.Errorf("writing blob %s: %w", k, err)
	}

	return Object{
		Key:         k,
		URL:         s.prefix + k,
		Size:        n,
		ContentType: contentType,
	}, nil
}

func (s *FSStore) Delete(_ context.Context, key string) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(k))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob %s: %w", k, err)
	}

	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
