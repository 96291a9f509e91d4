package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"photojournal/internal/model"
)

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) List(ctx context.Context) ([]model.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindByID(ctx context.Context, id string) (*model.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entry), args.Error(1)
}

func (m *MockEntryRepository) Insert(ctx context.Context, entry model.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntryRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
