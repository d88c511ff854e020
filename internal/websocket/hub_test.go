package websocket

import (
	"testing"
	"time"

	"ai-studypal-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func registerTestClient(t *testing.T, hub *Hub, buffer int) *Client {
	t.Helper()
	client := &Client{
		UserID: uuid.New(),
		Send:   make(chan []byte, buffer),
	}
	hub.register <- client

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.clients[client.UserID]
		return ok
	}, time.Second, 5*time.Millisecond)

	return client
}

func TestSendDeliversToConnectedClient(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()

	client := registerTestClient(t, hub, 4)
	hub.Send(client.UserID, Message{Type: TypeBalanceUpdate, Data: map[string]interface{}{"balance": 7}})

	select {
	case raw := <-client.Send:
		assert.Contains(t, string(raw), TypeBalanceUpdate)
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestBroadcastEvictsStalledClientsWithoutBlocking(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()

	// Two clients with full buffers and no readers. Both must be evicted and
	// Broadcast must still return.
	registerTestClient(t, hub, 0)
	registerTestClient(t, hub, 0)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(Message{Type: TypeNotification, Data: map[string]interface{}{"title": "ping"}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on stalled clients")
	}

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSendEvictsSingleStalledClient(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()

	client := registerTestClient(t, hub, 0)
	hub.Send(client.UserID, Message{Type: TypeSessionStatus, Data: map[string]interface{}{"status": "searching"}})

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.clients[client.UserID]
		return !ok
	}, time.Second, 5*time.Millisecond)
}
