package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/LordEaster/Say4Me/internal/ierr"
	"github.com/LordEaster/Say4Me/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOpenHandler_ReturnsUpdatedCount(t *testing.T) {
	store := persistence.NewMockStore()
	openHandler := NewOpenHandler(store)

	store.On("IncrementViewerCount", mock.Anything, "65a000000000000000000001").
		Return(int64(4), nil).Once()

	response, err := openHandler.Handle(context.Background(), OpenRequest{Id: "65a000000000000000000001"})

	require.NoError(t, err)
	assert.Equal(t, int64(4), response.ViewerCount)
}

func TestOpenHandler_PropagatesNotFound(t *testing.T) {
	store := persistence.NewMockStore()
	openHandler := NewOpenHandler(store)

	store.On("IncrementViewerCount", mock.Anything, "nonexistent-id").
		Return(int64(0), ierr.New(ierr.ErrorCodeNotFound, errors.New("unknown message id: nonexistent-id"))).
		Once()

	_, err := openHandler.Handle(context.Background(), OpenRequest{Id: "nonexistent-id"})

	assert.Equal(t, ierr.ErrorCodeNotFound, errorCode(t, err))
}

func TestOpenHandler_RequiresId(t *testing.T) {
	store := persistence.NewMockStore()
	openHandler := NewOpenHandler(store)

	_, err := openHandler.Handle(context.Background(), OpenRequest{})

	assert.Equal(t, ierr.ErrorCodeInvalidArgument, errorCode(t, err))
	store.AssertNotCalled(t, "IncrementViewerCount", mock.Anything, mock.Anything)
}
