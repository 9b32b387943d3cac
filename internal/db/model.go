package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model 是所有内容记录共享的基础字段。
// ID 由存储端在创建时分配；Pending 仅在本地兜底写入尚未同步时为 true，不落库。
type Model struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Pending   bool      `gorm:"-" json:"pending,omitempty"`
}

// BeforeCreate 为缺少 ID 的记录分配 UUID。
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// GetID 返回记录 ID。
func (m *Model) GetID() string { return m.ID }

// CreatedTime 返回创建时间。
func (m *Model) CreatedTime() time.Time { return m.CreatedAt }

// SetID 设置记录 ID。
func (m *Model) SetID(id string) { m.ID = id }

// Stamp 设置创建与更新时间。
func (m *Model) Stamp(t time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = t
	}
	m.UpdatedAt = t
}

// MarkPending 标记记录是否仍只存在于本地。
func (m *Model) MarkPending(pending bool) { m.Pending = pending }
