package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/service/state"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// 客户端的两个标签页
const (
	TabMessages = "messages"
	TabCalendar = "calendar"
)

// SettingsService 界面偏好
type SettingsService struct {
	store *state.Store
}

func NewSettingsService(store *state.Store) *SettingsService {
	return &SettingsService{store: store}
}

func (s *SettingsService) Get(ctx context.Context) (state.Settings, error) {
	return s.store.Settings(ctx)
}

// Update 校验后保存，空字段保留原值
func (s *SettingsService) Update(ctx context.Context, patch state.Settings) (state.Settings, error) {
	current, err := s.store.Settings(ctx)
	if err != nil {
		return current, err
	}

	if color := strings.TrimSpace(patch.HighlightColor); color != "" {
		if !hexColorPattern.MatchString(color) {
			return current, &domain.ValidationError{Message: "highlightColor must be a hex colour like #82c93c"}
		}
		current.HighlightColor = color
	}
	if tab := strings.TrimSpace(patch.Tab); tab != "" {
		if tab != TabMessages && tab != TabCalendar {
			return current, &domain.ValidationError{Message: "tab must be messages or calendar"}
		}
		current.Tab = tab
	}

	if err := s.store.SaveSettings(ctx, current); err != nil {
		return current, err
	}
	return current, nil
}
