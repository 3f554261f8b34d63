package persistence

import (
	"context"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of Store for handler and server tests.
type MockStore struct {
	mock.Mock
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Setup(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockStore) Insert(ctx context.Context, request InsertRequest) (board.Message, error) {
	args := m.Called(ctx, request)

	return args.Get(0).(board.Message), args.Error(1)
}

func (m *MockStore) ListRecent(ctx context.Context, filter ListFilter) ([]board.Message, error) {
	args := m.Called(ctx, filter)

	messages, _ := args.Get(0).([]board.Message)

	return messages, args.Error(1)
}

func (m *MockStore) IncrementViewerCount(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(int64), args.Error(1)
}
