package server

import (
	"net/http"

	"github.com/LordEaster/Say4Me/internal/handler"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketServer serves the live subscription: a push-only stream that
// opens with a connected acknowledgement frame and then carries one JSON
// frame per approved message. There is no replay; clients re-fetch the
// snapshot over REST after a reconnect.
type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader

	feedHandler handler.FeedHandlerInterface
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	feedHandler handler.FeedHandlerInterface,
) *WebSocketServer {
	return &WebSocketServer{
		logger,
		upgrader,
		feedHandler,
	}
}

func (s *WebSocketServer) Register(router *mux.Router) {
	router.HandleFunc("/subscribe", s.handleSubscribe).Methods("GET")
}

func (s *WebSocketServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	feed, err := s.feedHandler.OpenFeed(r.Context(), r.URL.Query().Get("sessionId"))
	if err != nil {
		s.logger.Error("failed to open feed", zap.Error(err))
		http.Error(w, "failed to open feed", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		feed.Close()
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.logger.Info("viewer connected")

	defer feed.Close()
	defer conn.Close()

	conn.SetReadLimit(1024)

	// Viewers never send application frames; the read loop only notices
	// the disconnect.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-feed.Updates:
			if !ok {
				s.logger.Info("viewer dropped by hub")
				return
			}

			err := conn.WriteJSON(event)
			if err != nil {
				s.logger.Info("viewer write failed", zap.Error(err))
				return
			}
		case <-disconnected:
			s.logger.Info("viewer disconnected")
			return
		}
	}
}
