package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sccsite/internal/media"
	"github.com/sccsite/internal/metrics"
)

var (
	// ErrFileTooLarge is returned when a file exceeds the upload limit.
	ErrFileTooLarge = errors.New("file exceeds upload limit")
	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("file is empty")
)

// File is an uploaded file as received from a form.
type File struct {
	Name string
	Body io.Reader
}

// Asset describes a stored upload.
type Asset struct {
	URL         string
	Key         string
	ContentType string
	Size        int64
	Width       int
	Height      int
}

// Uploader writes images to a Bucket under per-entity folders. Without a
// bucket it returns inline data URLs instead.
type Uploader struct {
	bucket   Bucket
	maxBytes int64
}

// NewUploader returns an Uploader. bucket may be nil.
func NewUploader(bucket Bucket, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Uploader{bucket: bucket, maxBytes: maxBytes}
}

// Inline reports whether uploads are stored as data URLs.
func (u *Uploader) Inline() bool {
	return u.bucket == nil
}

// Upload stores file under folder with a random name that keeps the original
// extension, and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, file File, folder string) (Asset, error) {
	asset, err := u.upload(ctx, file, folder)
	metrics.Uploads.WithLabelValues(folder, metrics.Result(err)).Inc()
	if err == nil {
		metrics.UploadBytes.Add(float64(asset.Size))
	}
	return asset, err
}

func (u *Uploader) upload(ctx context.Context, file File, folder string) (Asset, error) {
	if file.Body == nil {
		return Asset{}, ErrEmptyFile
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, u.maxBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Asset{}, ErrEmptyFile
	}
	if int64(len(data)) > u.maxBytes {
		return Asset{}, ErrFileTooLarge
	}

	contentType, ext, err := media.DetectImage(data)
	if err != nil {
		return Asset{}, err
	}

	asset := Asset{ContentType: contentType, Size: int64(len(data))}
	if w, h, err := media.Dimensions(data); err == nil {
		asset.Width, asset.Height = w, h
	}

	if u.bucket == nil {
		asset.URL = media.DataURL(data)
		return asset, nil
	}

	asset.Key = path.Join(strings.Trim(folder, "/"), ObjectName(file.Name, ext))
	if err := u.bucket.Put(ctx, asset.Key, contentType, bytes.NewReader(data), asset.Size); err != nil {
		return Asset{}, err
	}
	asset.URL = u.bucket.PublicURL(asset.Key)
	return asset, nil
}

// Remove deletes the object behind rawURL. The key is the folder plus the
// trailing URL segment. Failures are logged and otherwise ignored.
func (u *Uploader) Remove(ctx context.Context, rawURL, folder string) {
	if u.bucket == nil {
		return
	}
	key, ok := KeyFromURL(rawURL, folder)
	if !ok {
		return
	}
	if err := u.bucket.Delete(ctx, key); err != nil {
		log.Printf("[storage] remove %s: %v", key, err)
		metrics.Uploads.WithLabelValues(folder, "remove_error").Inc()
	}
}

// ObjectName returns a random object name with the extension of filename,
// falling back to fallbackExt when filename has none.
func ObjectName(filename, fallbackExt string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" || ext == "." {
		ext = fallbackExt
	}
	return uuid.NewString() + ext
}

// KeyFromURL derives the object key for rawURL within folder.
func KeyFromURL(rawURL, folder string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || media.IsDataURL(rawURL) {
		return "", false
	}

	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	}
	name := path.Base(p)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", false
	}
	return path.Join(strings.Trim(folder, "/"), name), true
}
