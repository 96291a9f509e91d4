package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photojournal/internal/kvstore"
	kvMocks "photojournal/internal/kvstore/mocks"
)

func TestPreferences_DefaultsAndToggle(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	svc := NewPreferencesService(kv)

	p, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, p.DarkMode)

	p, err = svc.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, p.DarkMode)

	raw, err := kv.Get(ctx, DarkModeKey)
	require.NoError(t, err)
	assert.Equal(t, "true", string(raw))

	p, err = svc.SetDarkMode(ctx, false)
	require.NoError(t, err)
	assert.False(t, p.DarkMode)

	p, _ = svc.Get(ctx)
	assert.False(t, p.DarkMode)
}

func TestPreferences_CorruptValueReadsAsLight(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, DarkModeKey, []byte("maybe")))

	p, err := NewPreferencesService(kv).Get(ctx)
	require.NoError(t, err)
	assert.False(t, p.DarkMode)
}

func TestPreferences_WriteFailure(t *testing.T) {
	ctx := context.Background()
	kv := new(kvMocks.MockStore)
	kv.On("Set", ctx, DarkModeKey, mock.Anything).Return(errors.New("read-only"))

	_, err := NewPreferencesService(kv).SetDarkMode(ctx, true)
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	kv.AssertExpectations(t)
}
