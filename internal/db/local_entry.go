package db

import "time"

// LocalEntry 存储本地兜底数据的键值对，值为 JSON 文本。
type LocalEntry struct {
	Key       string `gorm:"primaryKey;size:120"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName 自定义表名以保持命名一致。
func (LocalEntry) TableName() string {
	return "local_entries"
}
