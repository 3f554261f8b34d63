package handler

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/LordEaster/Say4Me/internal/hub"
	"github.com/LordEaster/Say4Me/internal/ierr"
	"github.com/LordEaster/Say4Me/internal/moderation"
	"github.com/LordEaster/Say4Me/internal/persistence"
	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type SubmitRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Body      string `json:"message" validate:"required"`
	SessionId string `json:"sessionId"`
}

type SubmitHandlerInterface interface {
	Handle(ctx context.Context, req SubmitRequest) (board.Message, error)
}

// SubmitHandler runs the submission pipeline: validate, ensure session,
// moderate, persist, broadcast. The pipeline is strictly linear and never
// retries a step.
type SubmitHandler struct {
	logger *zap.Logger

	validate      *validator.Validate
	bodyMaxLength int
	gate          moderation.Gate
	store         persistence.Store
	hub           hub.Hub
}

func NewSubmitHandler(
	logger *zap.Logger,
	bodyMaxLength int,
	gate moderation.Gate,
	store persistence.Store,
	hub hub.Hub,
) *SubmitHandler {
	return &SubmitHandler{
		logger:        logger,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		bodyMaxLength: bodyMaxLength,
		gate:          gate,
		store:         store,
		hub:           hub,
	}
}

func (h *SubmitHandler) Handle(ctx context.Context, req SubmitRequest) (board.Message, error) {
	err := h.validate.Struct(req)
	if err != nil {
		return board.Message{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("recipient and message are required"))
	}

	if utf8.RuneCountInString(req.Body) > h.bodyMaxLength {
		return board.Message{},
			ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("message exceeds %d characters", h.bodyMaxLength))
	}

	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = gonanoid.Must()
	}

	verdict := h.gate.Classify(ctx, req.Body)
	if verdict != moderation.VerdictApproved {
		return board.Message{},
			ierr.New(ierr.ErrorCodeContentRejected, errors.New("message contains inappropriate content"))
	}

	message, err := h.store.Insert(ctx, persistence.InsertRequest{
		Recipient: req.Recipient,
		Body:      req.Body,
		SessionId: sessionId,
	})
	if err != nil {
		return board.Message{}, err
	}

	// The write already succeeded; delivery problems stay inside the hub
	// and never unwind the submission.
	h.hub.Publish(message)

	h.logger.Info("message submitted",
		zap.String("id", message.Id))

	return message, nil
}
