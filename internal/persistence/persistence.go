package persistence

import (
	"context"

	"github.com/LordEaster/Say4Me/internal/board"
)

// Store is the durable side of the board. It owns id and createdAt
// assignment; callers never pick identifiers.
type Store interface {
	Setup(ctx context.Context) error
	Insert(ctx context.Context, request InsertRequest) (board.Message, error)
	ListRecent(ctx context.Context, filter ListFilter) ([]board.Message, error)

	// IncrementViewerCount bumps the open counter for one message as a
	// single atomic backend operation and returns the new value.
	IncrementViewerCount(ctx context.Context, id string) (int64, error)
}

type InsertRequest struct {
	Recipient string
	Body      string
	SessionId string
}

// ListFilter narrows and bounds a snapshot read. A zero Limit falls back to
// the store default; a cursor can be added here later without breaking callers.
type ListFilter struct {
	SessionId string
	Limit     int64
}
