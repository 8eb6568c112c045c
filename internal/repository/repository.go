package repository

import (
	"context"
)

// KVRepository 键值存储，对应客户端的 get/set 持久化语义
type KVRepository interface {
	// Get 读取值，不存在时 ok 为 false
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 写入值，已存在则覆盖
	Set(ctx context.Context, key, value string) error

	// Delete 删除键，不存在时不报错
	Delete(ctx context.Context, key string) error
}
