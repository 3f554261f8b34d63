package server

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/LordEaster/Say4Me/internal/handler"
	"github.com/LordEaster/Say4Me/internal/hub"
	"github.com/LordEaster/Say4Me/internal/persistence"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWebSocketFixture(t *testing.T) (*hub.InMemoryHub, *persistence.MockStore, string) {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	broadcastHub := hub.NewInMemoryHub(logger)
	store := persistence.NewMockStore()
	feedHandler := handler.NewFeedHandler(store, broadcastHub)

	websocketServer := NewWebSocketServer(logger, &websocket.Upgrader{}, feedHandler)

	router := mux.NewRouter()
	websocketServer.Register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	u, _ := url.Parse(server.URL)
	u.Scheme = "ws"
	u.Path = "/subscribe"

	return broadcastHub, store, u.String()
}

func dialViewer(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) hub.Event {
	t.Helper()

	var event hub.Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&event))

	return event
}

func TestWebSocketServer_ConnectedAckThenLiveUpdates(t *testing.T) {
	broadcastHub, store, wsURL := newWebSocketFixture(t)
	store.On("ListRecent", mock.Anything, mock.Anything).Return([]board.Message{}, nil)

	conn := dialViewer(t, wsURL)

	ack := readFrame(t, conn)
	assert.Equal(t, hub.EventConnected, ack.Event)
	assert.Nil(t, ack.Message)

	published := board.Message{
		Id:        "65a000000000000000000001",
		Recipient: "Mom",
		Body:      "I love you",
	}
	broadcastHub.Publish(published)

	event := readFrame(t, conn)
	assert.Equal(t, hub.EventMessageCreated, event.Event)
	require.NotNil(t, event.Message)
	assert.Equal(t, published.Id, event.Message.Id)
	assert.Equal(t, published.Body, event.Message.Body)
}

func TestWebSocketServer_FanOutToAllConnectedViewers(t *testing.T) {
	broadcastHub, store, wsURL := newWebSocketFixture(t)
	store.On("ListRecent", mock.Anything, mock.Anything).Return([]board.Message{}, nil)

	first := dialViewer(t, wsURL)
	second := dialViewer(t, wsURL)

	require.Equal(t, hub.EventConnected, readFrame(t, first).Event)
	require.Equal(t, hub.EventConnected, readFrame(t, second).Event)

	broadcastHub.Publish(board.Message{Id: "65a000000000000000000001"})

	assert.Equal(t, "65a000000000000000000001", readFrame(t, first).Message.Id)
	assert.Equal(t, "65a000000000000000000001", readFrame(t, second).Message.Id)

	// A viewer connecting after delivery gets no replay, only the next
	// publish.
	late := dialViewer(t, wsURL)
	require.Equal(t, hub.EventConnected, readFrame(t, late).Event)

	broadcastHub.Publish(board.Message{Id: "65a000000000000000000002"})

	assert.Equal(t, "65a000000000000000000002", readFrame(t, late).Message.Id)
	assert.Equal(t, "65a000000000000000000002", readFrame(t, first).Message.Id)
	assert.Equal(t, "65a000000000000000000002", readFrame(t, second).Message.Id)
}

func TestWebSocketServer_DisconnectRemovesOnlyThatViewer(t *testing.T) {
	broadcastHub, store, wsURL := newWebSocketFixture(t)
	store.On("ListRecent", mock.Anything, mock.Anything).Return([]board.Message{}, nil)

	leaving := dialViewer(t, wsURL)
	staying := dialViewer(t, wsURL)

	require.Equal(t, hub.EventConnected, readFrame(t, leaving).Event)
	require.Equal(t, hub.EventConnected, readFrame(t, staying).Event)

	require.NoError(t, leaving.Close())

	// Give the server a moment to observe the disconnect.
	time.Sleep(50 * time.Millisecond)

	broadcastHub.Publish(board.Message{Id: "65a000000000000000000001"})

	assert.Equal(t, "65a000000000000000000001", readFrame(t, staying).Message.Id)
}

func TestWebSocketServer_SnapshotFailureRefusesUpgrade(t *testing.T) {
	_, store, wsURL := newWebSocketFixture(t)
	store.On("ListRecent", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	_, response, err := websocket.DefaultDialer.Dial(wsURL, nil)

	assert.Error(t, err)
	require.NotNil(t, response)
	assert.Equal(t, 503, response.StatusCode)
}
