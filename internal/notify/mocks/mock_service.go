package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"photojournal/internal/notify"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Permission(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) RequestPermission(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) RequiresChannel() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockService) EnsureChannel(ctx context.Context, ch notify.ChannelConfig) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockService) Schedule(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
