package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/crud"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/localstore"
	"github.com/sccsite/internal/storage"
)

// ErrGalleryImageNotFound 表示活动相册中没有该图片
var ErrGalleryImageNotFound = errors.New("gallery image not found")

// EventService 在活动表之上合并本地侧表保存的扩展字段。
// 扩展字段按活动 ID 保存，远端表不包含这些列。
type EventService struct {
	events   content.Repository[db.Event]
	local    *localstore.Store
	uploader crud.Uploader

	mu sync.Mutex
}

// NewEventService 创建 EventService。uploader 可以为 nil。
func NewEventService(events content.Repository[db.Event], local *localstore.Store, uploader crud.Uploader) *EventService {
	return &EventService{events: events, local: local, uploader: uploader}
}

// List 返回全部活动并附带扩展字段
func (s *EventService) List(ctx context.Context) ([]db.Event, error) {
	items, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	extras := s.loadExtras()
	for i := range items {
		if extra, ok := extras[items[i].ID]; ok {
			items[i].EventExtra = extra
		}
	}
	return items, nil
}

// Get 返回单个活动并附带扩展字段
func (s *EventService) Get(ctx context.Context, id string) (*db.Event, error) {
	item, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if extra, ok := s.loadExtras()[id]; ok {
		item.EventExtra = extra
	}
	return item, nil
}

// Create 创建活动，成功后以真实 ID 保存扩展字段
func (s *EventService) Create(ctx context.Context, item *db.Event) error {
	extra := NormalizeExtra(item.EventExtra)
	item.GalleryImages = MergeGallery(nil, item.GalleryImages)
	if err := s.events.Create(ctx, item); err != nil {
		return err
	}
	item.EventExtra = extra
	s.saveExtra(item.ID, extra)
	return nil
}

// Update 更新活动与扩展字段
func (s *EventService) Update(ctx context.Context, id string, apply func(*db.Event)) (*db.Event, error) {
	current := s.loadExtras()[id]

	var extra db.EventExtra
	updated, err := s.events.Update(ctx, id, func(e *db.Event) {
		e.EventExtra = current
		apply(e)
		e.GalleryImages = MergeGallery(nil, e.GalleryImages)
		extra = NormalizeExtra(e.EventExtra)
	})
	if err != nil {
		return nil, err
	}
	updated.EventExtra = extra
	s.saveExtra(id, extra)
	return updated, nil
}

// Delete 删除活动及其扩展字段，并尽量清理相册图片
func (s *EventService) Delete(ctx context.Context, id string) error {
	var gallery []string
	if item, err := s.events.Get(ctx, id); err == nil {
		gallery = item.GalleryImages
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.saveExtra(id, db.EventExtra{})
	if s.uploader != nil {
		for _, url := range gallery {
			s.uploader.Remove(ctx, url, storage.FolderEventGallery)
		}
	}
	return nil
}

// GallerySlots 返回活动相册还能追加的图片数量。id 为空表示新建活动。
func (s *EventService) GallerySlots(ctx context.Context, id string, draft []string) int {
	var existing []string
	if id != "" {
		if item, err := s.events.Get(ctx, id); err == nil {
			existing = item.GalleryImages
		}
	}
	return MaxGalleryImages - len(MergeGallery(existing, draft))
}

// UploadGallery 上传相册图片，最多处理 MaxGalleryImages 个文件。
// 单个文件失败时记录日志并继续。
func (s *EventService) UploadGallery(ctx context.Context, files []storage.File) []string {
	if s.uploader == nil {
		return nil
	}
	if len(files) > MaxGalleryImages {
		files = files[:MaxGalleryImages]
	}
	urls := make([]string, 0, len(files))
	for _, file := range files {
		asset, err := s.uploader.Upload(ctx, file, storage.FolderEventGallery)
		if err != nil {
			log.Printf("[events] upload gallery image %s: %v", file.Name, err)
			continue
		}
		urls = append(urls, asset.URL)
	}
	return urls
}

// RemoveGalleryImage 从活动相册中移除一张图片
func (s *EventService) RemoveGalleryImage(ctx context.Context, id, url string) (*db.Event, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	remaining := make([]string, 0, len(item.GalleryImages))
	found := false
	for _, existing := range item.GalleryImages {
		if existing == url {
			found = true
			continue
		}
		remaining = append(remaining, existing)
	}
	if !found {
		return nil, ErrGalleryImageNotFound
	}

	updated, err := s.Update(ctx, id, func(e *db.Event) {
		e.GalleryImages = remaining
	})
	if err != nil {
		return nil, err
	}
	if s.uploader != nil {
		s.uploader.Remove(ctx, url, storage.FolderEventGallery)
	}
	return updated, nil
}

func (s *EventService) loadExtras() map[string]db.EventExtra {
	s.mu.Lock()
	defer s.mu.Unlock()
	return localstore.Load(s.local, localstore.KeyEventExtra, map[string]db.EventExtra{})
}

func (s *EventService) saveExtra(id string, extra db.EventExtra) {
	s.mu.Lock()
	defer s.mu.Unlock()

	extras := localstore.Load(s.local, localstore.KeyEventExtra, map[string]db.EventExtra{})
	if extra.IsZero() {
		if _, ok := extras[id]; !ok {
			return
		}
		delete(extras, id)
	} else {
		extras[id] = extra
	}
	localstore.Save(s.local, localstore.KeyEventExtra, extras)
}
