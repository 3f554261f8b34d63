package handler

import (
	"context"
	"sync"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/LordEaster/Say4Me/internal/hub"
	"github.com/LordEaster/Say4Me/internal/persistence"
)

// Feed is one viewer's composed view of the board: the snapshot at connect
// time plus the live updates that follow. Updates is closed when the viewer
// closes the feed or the hub drops it as a slow consumer.
type Feed struct {
	Snapshot []board.Message
	Updates  <-chan hub.Event

	hub            hub.Hub
	subscriptionId string
	done           chan struct{}
	closeOnce      sync.Once
}

// Close cancels this viewer's subscription only; in-flight submissions and
// other viewers are unaffected.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
		f.hub.Unsubscribe(f.subscriptionId)
	})
}

type FeedHandlerInterface interface {
	OpenFeed(ctx context.Context, sessionId string) (*Feed, error)
}

type FeedHandler struct {
	store persistence.Store
	hub   hub.Hub
}

func NewFeedHandler(store persistence.Store, hub hub.Hub) *FeedHandler {
	return &FeedHandler{
		store,
		hub,
	}
}

// OpenFeed subscribes before the viewer starts consuming and fetches the
// snapshot the live stream is deduplicated against. A message published in
// the window between subscribe and snapshot would otherwise show up twice.
func (h *FeedHandler) OpenFeed(ctx context.Context, sessionId string) (*Feed, error) {
	subscription := h.hub.Subscribe()

	snapshot, err := h.store.ListRecent(ctx, persistence.ListFilter{
		SessionId: sessionId,
	})
	if err != nil {
		h.hub.Unsubscribe(subscription.Id)

		return nil, err
	}

	seen := make(map[string]struct{}, len(snapshot))
	for _, message := range snapshot {
		seen[message.Id] = struct{}{}
	}

	updates := make(chan hub.Event, cap(subscription.Events))
	done := make(chan struct{})

	go func() {
		defer close(updates)

		for event := range subscription.Events {
			if event.Message != nil {
				if _, duplicate := seen[event.Message.Id]; duplicate {
					continue
				}
			}

			select {
			case updates <- event:
			case <-done:
				return
			}
		}
	}()

	return &Feed{
		Snapshot:       snapshot,
		Updates:        updates,
		hub:            h.hub,
		subscriptionId: subscription.Id,
		done:           done,
	}, nil
}
