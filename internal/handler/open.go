package handler

import (
	"context"
	"errors"

	"github.com/LordEaster/Say4Me/internal/ierr"
	"github.com/LordEaster/Say4Me/internal/persistence"
)

type OpenRequest struct {
	Id string `json:"id"`
}

type OpenResponse struct {
	ViewerCount int64 `json:"viewerCount"`
}

type OpenHandlerInterface interface {
	Handle(ctx context.Context, req OpenRequest) (OpenResponse, error)
}

type OpenHandler struct {
	store persistence.Store
}

func NewOpenHandler(store persistence.Store) *OpenHandler {
	return &OpenHandler{
		store,
	}
}

func (h *OpenHandler) Handle(ctx context.Context, req OpenRequest) (OpenResponse, error) {
	if req.Id == "" {
		return OpenResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("message id is required"))
	}

	viewerCount, err := h.store.IncrementViewerCount(ctx, req.Id)
	if err != nil {
		return OpenResponse{}, err
	}

	return OpenResponse{
		ViewerCount: viewerCount,
	}, nil
}
