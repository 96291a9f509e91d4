package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"photojournal/internal/model"
)

type MockPreferencesService struct {
	mock.Mock
}

func (m *MockPreferencesService) Get(ctx context.Context) (model.Preferences, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Preferences), args.Error(1)
}

func (m *MockPreferencesService) SetDarkMode(ctx context.Context, on bool) (model.Preferences, error) {
	args := m.Called(ctx, on)
	return args.Get(0).(model.Preferences), args.Error(1)
}

func (m *MockPreferencesService) ToggleDarkMode(ctx context.Context) (model.Preferences, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Preferences), args.Error(1)
}
