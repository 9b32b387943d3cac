// Package crud 提供后台内容管理通用的表单控制器。
//
// 每个实体一个 Controller：校验、上传图片、写入仓储、刷新列表，
// 并用状态机防止重复提交。
package crud

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/storage"
)

// ErrBusy 表示上一次保存尚未完成
var ErrBusy = errors.New("save already in progress")

// State 是表单状态
type State string

const (
	StateIdle    State = "idle"
	StateAdding  State = "adding"
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

// ValidationError 列出缺失或不合法的字段
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Field 是一个待校验的表单字段
type Field struct {
	Name  string
	Value string
}

// Require 返回空白字段组成的 ValidationError，全部非空时返回 nil
func Require(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Fields: missing}
}

// Uploader 保存与删除图片
type Uploader interface {
	Upload(ctx context.Context, file storage.File, folder string) (storage.Asset, error)
	Remove(ctx context.Context, url, folder string)
}

// Schema 描述一个实体的表单规则
type Schema[T any] struct {
	Name   string
	Folder string
	// Normalize 在校验前填充默认值、裁剪空白
	Normalize func(item *T)
	// Validate 校验草稿；hasImage 表示本次上传了文件或已有图片
	Validate func(item *T, hasImage bool) error
	// Image 返回图片 URL 字段，实体没有图片时为 nil
	Image func(item *T) *string
	// OnUpload 在上传成功后写入额外信息，例如宽高
	OnUpload func(item *T, asset storage.Asset)
	// Merge 在编辑时用当前记录补全草稿中未提交的字段
	Merge func(draft, current *T)
}

// Controller 驱动一个实体的新增、编辑与删除
type Controller[T any, PT interface {
	*T
	content.Entity
}] struct {
	repo     content.Repository[T]
	uploader Uploader
	schema   Schema[T]

	mu      sync.Mutex
	state   State
	current *T
	items   []T
}

// NewController 创建 Controller。uploader 为 nil 时拒绝带文件的保存。
func NewController[T any, PT interface {
	*T
	content.Entity
}](repo content.Repository[T], uploader Uploader, schema Schema[T]) *Controller[T, PT] {
	return &Controller[T, PT]{repo: repo, uploader: uploader, schema: schema, state: StateIdle, items: []T{}}
}

// Schema 返回表单规则
func (c *Controller[T, PT]) Schema() Schema[T] { return c.schema }

// Repository 返回底层仓储
func (c *Controller[T, PT]) Repository() content.Repository[T] { return c.repo }

// State 返回当前状态
func (c *Controller[T, PT]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current 返回正在编辑的记录
func (c *Controller[T, PT]) Current() *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Items 返回最近一次刷新的列表
func (c *Controller[T, PT]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// BeginAdd 进入新增状态
func (c *Controller[T, PT]) BeginAdd() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSaving {
		return ErrBusy
	}
	c.state = StateAdding
	c.current = nil
	return nil
}

// BeginEdit 载入记录并进入编辑状态
func (c *Controller[T, PT]) BeginEdit(ctx context.Context, id string) (*T, error) {
	if c.State() == StateSaving {
		return nil, ErrBusy
	}
	item, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSaving {
		return nil, ErrBusy
	}
	c.state = StateEditing
	c.current = item
	return item, nil
}

// Cancel 放弃当前表单
func (c *Controller[T, PT]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSaving {
		c.state = StateIdle
		c.current = nil
	}
}

// Refresh 重新读取列表
func (c *Controller[T, PT]) Refresh(ctx context.Context) ([]T, error) {
	items, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return items, nil
}

// Save 校验并保存草稿。草稿 ID 为空时新增，否则更新对应记录。
// file 为 nil 时编辑会沿用原有图片。
func (c *Controller[T, PT]) Save(ctx context.Context, draft *T, file *storage.File) (*T, error) {
	id := PT(draft).GetID()
	mode := StateAdding
	if id != "" {
		mode = StateEditing
	}

	c.mu.Lock()
	if c.state == StateSaving {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = StateSaving
	c.mu.Unlock()

	saved, err := c.save(ctx, id, draft, file)

	c.mu.Lock()
	if err != nil {
		c.state = mode
	} else {
		c.state = StateIdle
		c.current = nil
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if _, err := c.Refresh(ctx); err != nil {
		log.Printf("[crud] %s refresh after save: %v", c.schema.Name, err)
	}
	return saved, nil
}

func (c *Controller[T, PT]) save(ctx context.Context, id string, draft *T, file *storage.File) (*T, error) {
	if c.schema.Normalize != nil {
		c.schema.Normalize(draft)
	}

	// 编辑时假定可沿用原图，先在不访问仓储的情况下校验
	if c.schema.Validate != nil {
		optimistic := file != nil || id != ""
		if !optimistic && c.schema.Image != nil {
			optimistic = strings.TrimSpace(*c.schema.Image(draft)) != ""
		}
		if err := c.schema.Validate(draft, optimistic); err != nil {
			return nil, err
		}
	}

	var current *T
	if id != "" {
		item, err := c.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		current = item
		if c.schema.Merge != nil {
			c.schema.Merge(draft, current)
		}
	}

	previousImage := ""
	if current != nil && c.schema.Image != nil {
		previousImage = *c.schema.Image(current)
	}

	hasImage := file != nil
	if !hasImage && c.schema.Image != nil {
		img := c.schema.Image(draft)
		if strings.TrimSpace(*img) == "" {
			*img = previousImage
		}
		hasImage = strings.TrimSpace(*img) != ""
	}

	if c.schema.Validate != nil && current != nil && !hasImage {
		if err := c.schema.Validate(draft, false); err != nil {
			return nil, err
		}
	}

	uploaded := ""
	if file != nil && c.schema.Image != nil {
		if c.uploader == nil {
			return nil, errors.New("uploads are not configured")
		}
		asset, err := c.uploader.Upload(ctx, *file, c.schema.Folder)
		if err != nil {
			return nil, err
		}
		uploaded = asset.URL
		*c.schema.Image(draft) = asset.URL
		if c.schema.OnUpload != nil {
			c.schema.OnUpload(draft, asset)
		}
	}

	saved, err := c.write(ctx, id, draft)
	if err != nil {
		if uploaded != "" {
			c.uploader.Remove(ctx, uploaded, c.schema.Folder)
		}
		return nil, err
	}

	if uploaded != "" && previousImage != "" && previousImage != uploaded {
		c.uploader.Remove(ctx, previousImage, c.schema.Folder)
	}
	return saved, nil
}

func (c *Controller[T, PT]) write(ctx context.Context, id string, draft *T) (*T, error) {
	if id == "" {
		if err := c.repo.Create(ctx, draft); err != nil {
			return nil, err
		}
		return draft, nil
	}

	return c.repo.Update(ctx, id, func(cur *T) {
		created := PT(cur).CreatedTime()
		*cur = *draft
		PT(cur).SetID(id)
		PT(cur).Stamp(created)
	})
}

// Delete 删除记录并尽量清理其图片
func (c *Controller[T, PT]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.state == StateSaving {
		c.mu.Unlock()
		return ErrBusy
	}
	c.mu.Unlock()

	var image string
	if c.schema.Image != nil {
		if item, err := c.repo.Get(ctx, id); err == nil {
			image = *c.schema.Image(item)
		}
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	if image != "" && c.uploader != nil {
		c.uploader.Remove(ctx, image, c.schema.Folder)
	}

	if _, err := c.Refresh(ctx); err != nil {
		log.Printf("[crud] %s refresh after delete: %v", c.schema.Name, err)
	}
	return nil
}
