package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveMemory(ctx context.Context, record Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStorage) GetMemoriesByUser(ctx context.Context, user string, limit int) ([]Record, error) {
	args := m.Called(ctx, user, limit)
	return args.Get(0).([]Record), args.Error(1)
}

func (m *MockStorage) SearchMemories(ctx context.Context, user, pattern string, limit int) ([]Record, error) {
	args := m.Called(ctx, user, pattern, limit)
	return args.Get(0).([]Record), args.Error(1)
}
