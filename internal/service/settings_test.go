package service

import (
	"context"
	"testing"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/service/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	svc := NewSettingsService(state.NewStore(newMemoryKV()))
	ctx := context.Background()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.DefaultSettings(), got)

	got, err = svc.Update(ctx, state.Settings{Tab: TabCalendar})
	require.NoError(t, err)
	assert.Equal(t, "#82c93c", got.HighlightColor)
	assert.Equal(t, TabCalendar, got.Tab)

	got, err = svc.Update(ctx, state.Settings{HighlightColor: "#FFAA00"})
	require.NoError(t, err)
	assert.Equal(t, state.Settings{HighlightColor: "#FFAA00", Tab: TabCalendar}, got)

	reloaded, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)
}

func TestSettingsValidation(t *testing.T) {
	svc := NewSettingsService(state.NewStore(newMemoryKV()))
	ctx := context.Background()

	for _, patch := range []state.Settings{
		{HighlightColor: "green"},
		{HighlightColor: "#12345"},
		{Tab: "settings"},
	} {
		_, err := svc.Update(ctx, patch)
		var valErr *domain.ValidationError
		assert.ErrorAs(t, err, &valErr, "%+v", patch)
	}
}
