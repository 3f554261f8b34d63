package handler

import (
	"context"
	"testing"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/LordEaster/Say4Me/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListHandler_SummarizesNewestFirst(t *testing.T) {
	store := persistence.NewMockStore()
	listHandler := NewListHandler(store)

	store.On("ListRecent", mock.Anything, persistence.ListFilter{}).Return([]board.Message{
		{Id: "2", Recipient: "B", Body: "later", SessionId: "s2", ViewerCount: 3},
		{Id: "1", Recipient: "A", Body: "earlier", SessionId: "s1", ViewerCount: 0},
	}, nil).Once()

	summaries, err := listHandler.Handle(context.Background(), ListRequest{})

	require.NoError(t, err)
	assert.Equal(t, []board.Summary{
		{Id: "2", Recipient: "B", Body: "later", ViewerCount: 3},
		{Id: "1", Recipient: "A", Body: "earlier", ViewerCount: 0},
	}, summaries)
}

func TestListHandler_ForwardsSessionFilter(t *testing.T) {
	store := persistence.NewMockStore()
	listHandler := NewListHandler(store)

	store.On("ListRecent", mock.Anything, persistence.ListFilter{SessionId: "session-1"}).
		Return([]board.Message{}, nil).Once()

	_, err := listHandler.Handle(context.Background(), ListRequest{SessionId: "session-1"})

	require.NoError(t, err)
	store.AssertExpectations(t)
}
