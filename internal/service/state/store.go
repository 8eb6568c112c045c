package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/repository"
	"k8s.io/klog/v2"
)

const (
	KeyMessages = "junbot-messages"
	KeyTasks    = "junbot-tasks"
	KeySettings = "junbot-settings"
)

// Settings 客户端界面偏好
type Settings struct {
	HighlightColor string `json:"highlightColor"`
	Tab            string `json:"tab"`
}

// DefaultSettings 默认偏好
func DefaultSettings() Settings {
	return Settings{HighlightColor: "#82c93c", Tab: "messages"}
}

// Store 任务列表与对话记录的持久化
// 值以 JSON 存储，无版本号；读到损坏的值时回退为默认值
type Store struct {
	kv repository.KVRepository
}

// NewStore 创建存储
func NewStore(kv repository.KVRepository) *Store {
	return &Store{kv: kv}
}

// Tasks 读取任务列表
func (s *Store) Tasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := load(ctx, s.kv, KeyTasks, []domain.Task{})
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, err
}

// SaveTasks 保存任务列表
func (s *Store) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return save(ctx, s.kv, KeyTasks, tasks)
}

// Messages 读取对话记录
func (s *Store) Messages(ctx context.Context) ([]domain.Message, error) {
	messages, err := load(ctx, s.kv, KeyMessages, []domain.Message{})
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, err
}

// SaveMessages 保存对话记录
func (s *Store) SaveMessages(ctx context.Context, messages []domain.Message) error {
	if messages == nil {
		messages = []domain.Message{}
	}
	return save(ctx, s.kv, KeyMessages, messages)
}

// Settings 读取界面偏好，缺失字段用默认值补齐
func (s *Store) Settings(ctx context.Context) (Settings, error) {
	defaults := DefaultSettings()
	settings, err := load(ctx, s.kv, KeySettings, defaults)
	if err != nil {
		return defaults, err
	}
	if settings.HighlightColor == "" {
		settings.HighlightColor = defaults.HighlightColor
	}
	if settings.Tab == "" {
		settings.Tab = defaults.Tab
	}
	return settings, nil
}

// SaveSettings 保存界面偏好
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	return save(ctx, s.kv, KeySettings, settings)
}

func load[T any](ctx context.Context, kv repository.KVRepository, key string, fallback T) (T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fallback, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return fallback, nil
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		klog.Warningf("[Store] 存储值损坏，使用默认值: key=%s, error=%v", key, err)
		return fallback, nil
	}
	return value, nil
}

func save[T any](ctx context.Context, kv repository.KVRepository, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
