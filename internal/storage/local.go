package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrObjectNotFound is returned when deleting a key that does not exist.
var ErrObjectNotFound = errors.New("object not found")

// LocalBucket stores objects in a directory served under urlPrefix.
type LocalBucket struct {
	dir       string
	urlPrefix string
}

// NewLocalBucket creates dir if needed.
func NewLocalBucket(dir, urlPrefix string) (*LocalBucket, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	prefix := "/" + strings.Trim(strings.TrimSpace(urlPrefix), "/")
	return &LocalBucket{dir: dir, urlPrefix: prefix}, nil
}

// Dir returns the directory objects are written to.
func (b *LocalBucket) Dir() string { return b.dir }

// URLPrefix returns the path the directory is served under.
func (b *LocalBucket) URLPrefix() string { return b.urlPrefix }

func (b *LocalBucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	path, err := b.safeJoin(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		if cerr := f.Close(); cerr != nil {
			log.Printf("[storage] close %s after write error: %v", key, cerr)
		}
		if rerr := os.Remove(path); rerr != nil {
			log.Printf("[storage] remove %s after write error: %v", key, rerr)
		}
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(path); rerr != nil {
			log.Printf("[storage] remove %s after close error: %v", key, rerr)
		}
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

func (b *LocalBucket) Delete(ctx context.Context, key string) error {
	path, err := b.safeJoin(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (b *LocalBucket) PublicURL(key string) string {
	return b.urlPrefix + "/" + strings.TrimLeft(key, "/")
}

// safeJoin resolves key relative to dir and rejects directory traversal.
func (b *LocalBucket) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(b.dir)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(b.dir, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt: %q", key)
	}
	return absPath, nil
}
