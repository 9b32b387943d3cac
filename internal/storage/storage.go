package storage

import (
	"context"
	"io"
)

// Upload folders, one per content entity.
const (
	FolderTeam          = "team"
	FolderEvents        = "events"
	FolderEventGallery  = "events/gallery"
	FolderProjects      = "projects"
	FolderGallery       = "gallery"
	FolderAnnouncements = "announcements"
	FolderAbout         = "about"
)

// Bucket is an object store addressed by slash-separated keys.
type Bucket interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
