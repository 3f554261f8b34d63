package hub

import (
	"sync"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventConnected      = "connected"
	EventMessageCreated = "message.created"
)

// Event is one frame pushed to a viewer: the connect acknowledgement or a
// newly approved message.
type Event struct {
	Event   string         `json:"event"`
	Message *board.Message `json:"message,omitempty"`
}

// Subscription is a live delivery target. Events is closed when the
// subscription is removed, by the viewer or by the hub itself.
type Subscription struct {
	Id     string
	Events chan Event
}

type Hub interface {
	Subscribe() *Subscription
	Unsubscribe(subscriptionId string)
	Publish(message board.Message)
}

const sendBufferSize = 32

type InMemoryHub struct {
	logger *zap.Logger

	mu            sync.Mutex
	subscriptions map[string]*Subscription
}

func NewInMemoryHub(logger *zap.Logger) *InMemoryHub {
	return &InMemoryHub{
		logger:        logger,
		subscriptions: make(map[string]*Subscription),
	}
}

func (h *InMemoryHub) Subscribe() *Subscription {
	subscription := &Subscription{
		Id:     uuid.NewString(),
		Events: make(chan Event, sendBufferSize),
	}

	// The buffer is fresh, the acknowledgement can never block here.
	subscription.Events <- Event{Event: EventConnected}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscriptions[subscription.Id] = subscription

	h.logger.Debug("viewer subscribed",
		zap.String("subscriptionId", subscription.Id),
		zap.Int("subscribers", len(h.subscriptions)))

	return subscription
}

func (h *InMemoryHub) Unsubscribe(subscriptionId string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(subscriptionId)
}

func (h *InMemoryHub) Publish(message board.Message) {
	event := Event{
		Event:   EventMessageCreated,
		Message: &message,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var stale []string

	for id, subscription := range h.subscriptions {
		select {
		case subscription.Events <- event:
		default:
			h.logger.Warn("subscription buffer full, dropping viewer",
				zap.String("subscriptionId", id))

			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		h.removeLocked(id)
	}
}

// Close tears down every live subscription. Used at shutdown.
func (h *InMemoryHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := range h.subscriptions {
		h.removeLocked(id)
	}
}

// removeLocked must be called with the mutex held. Removal is idempotent:
// unsubscribing an already removed subscription is a no-op.
func (h *InMemoryHub) removeLocked(subscriptionId string) {
	subscription, ok := h.subscriptions[subscriptionId]
	if !ok {
		return
	}

	delete(h.subscriptions, subscriptionId)
	close(subscription.Events)
}
