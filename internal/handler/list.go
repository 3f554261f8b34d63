package handler

import (
	"context"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/LordEaster/Say4Me/internal/persistence"
	"github.com/samber/lo"
)

type ListRequest struct {
	SessionId string `json:"sessionId"`
}

type ListHandlerInterface interface {
	Handle(ctx context.Context, req ListRequest) ([]board.Summary, error)
}

type ListHandler struct {
	store persistence.Store
}

func NewListHandler(store persistence.Store) *ListHandler {
	return &ListHandler{
		store,
	}
}

func (h *ListHandler) Handle(ctx context.Context, req ListRequest) ([]board.Summary, error) {
	messages, err := h.store.ListRecent(ctx, persistence.ListFilter{
		SessionId: req.SessionId,
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(messages, func(message board.Message, _ int) board.Summary {
		return message.Summarize()
	}), nil
}
