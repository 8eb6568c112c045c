package model

import (
	"time"
)

// KVEntry 键值存储条目，值为 JSON 文本
type KVEntry struct {
	Key       string    `json:"key" gorm:"column:entry_key;primaryKey;size:191"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (KVEntry) TableName() string {
	return "kv_entries"
}
