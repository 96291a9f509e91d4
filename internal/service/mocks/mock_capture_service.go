package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"photojournal/internal/model"
	"photojournal/internal/service"
)

type MockCaptureService struct {
	mock.Mock
}

func (m *MockCaptureService) Capture(ctx context.Context, req service.CaptureRequest) (*model.Entry, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entry), args.Error(1)
}

func (m *MockCaptureService) RetrySave(ctx context.Context) (*model.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entry), args.Error(1)
}

func (m *MockCaptureService) State() service.CaptureState {
	args := m.Called()
	return args.Get(0).(service.CaptureState)
}

func (m *MockCaptureService) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
