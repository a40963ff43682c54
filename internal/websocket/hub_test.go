package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSubscriber captures sent messages in place of a live Subscription
type mockSubscriber struct {
	id       string
	clientID string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockSubscriber(id, clientID string) *mockSubscriber {
	return &mockSubscriber{
		id:       id,
		clientID: clientID,
		messages: make([][]byte, 0),
	}
}

func (m *mockSubscriber) ID() string {
	return m.id
}

func (m *mockSubscriber) LedgerClientID() string {
	return m.clientID
}

func (m *mockSubscriber) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrSubscriberClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	sub1 := newMockSubscriber("sub-1", "acme")
	sub2 := newMockSubscriber("sub-2", "acme")
	sub3 := newMockSubscriber("sub-3", "globex")

	hub.Register(sub1)
	hub.Register(sub2)
	hub.Register(sub3)

	assert.Equal(t, 2, hub.SubscriberCount("acme"))
	assert.Equal(t, 1, hub.SubscriberCount("globex"))
	assert.Equal(t, 3, hub.TotalSubscriberCount())

	hub.Unregister(sub1)
	assert.Equal(t, 1, hub.SubscriberCount("acme"))

	hub.Unregister(sub3)
	assert.Equal(t, 0, hub.SubscriberCount("globex"))
	assert.Equal(t, 1, hub.TotalSubscriberCount())

	// Unregistering twice is a no-op
	hub.Unregister(sub3)
	assert.Equal(t, 1, hub.TotalSubscriberCount())
}

func TestHub_BroadcastScopedToClient(t *testing.T) {
	hub := NewHub()

	acme := newMockSubscriber("sub-1", "acme")
	globex := newMockSubscriber("sub-2", "globex")
	hub.Register(acme)
	hub.Register(globex)

	hub.Broadcast("acme", NewEvent(EventTypeUpdated, EntityTypeLedger, map[string]string{"clientId": "acme"}))

	require.Eventually(t, func() bool { return len(acme.GetMessages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, globex.GetMessages())

	var event Event
	require.NoError(t, json.Unmarshal(acme.GetMessages()[0], &event))
	assert.Equal(t, "ledger.updated", event.Type)
	assert.Equal(t, EntityTypeLedger, event.Entity)
}

func TestHub_BroadcastNoSubscribers(t *testing.T) {
	hub := NewHub()

	assert.NotPanics(t, func() {
		hub.Broadcast("nobody", NewEvent(EventTypeUpdated, EntityTypeLedger, nil))
	})
}

func TestHub_BroadcastSkipsClosedSubscriber(t *testing.T) {
	hub := NewHub()

	closed := newMockSubscriber("sub-1", "acme")
	open := newMockSubscriber("sub-2", "acme")
	require.NoError(t, closed.Close())
	hub.Register(closed)
	hub.Register(open)

	hub.Broadcast("acme", NewEvent(EventTypeUpdated, EntityTypeLedger, nil))

	require.Eventually(t, func() bool { return len(open.GetMessages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, closed.GetMessages())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := newMockSubscriber(fmt.Sprintf("sub-%d", i), "acme")
			hub.Register(sub)
			hub.Broadcast("acme", NewEvent(EventTypeUpdated, EntityTypeLedger, i))
			hub.Unregister(sub)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.TotalSubscriberCount())
}
