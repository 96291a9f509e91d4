package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"photojournal/internal/model"
	"photojournal/internal/service"
	"photojournal/internal/storage"
)

type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) List(ctx context.Context) (*service.EntryListResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EntryListResult), args.Error(1)
}

func (m *MockEntryService) Get(ctx context.Context, id string) (*model.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entry), args.Error(1)
}

func (m *MockEntryService) OpenImage(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockEntryService) ImageURL(ctx context.Context, id string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, id, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockEntryService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntryService) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
