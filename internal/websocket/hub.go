package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrSubscriberClosed is returned when attempting to send to a closed subscriber
var ErrSubscriberClosed = errors.New("subscriber is closed")

// Subscriber defines the interface that connected subscribers must implement
type Subscriber interface {
	ID() string
	LedgerClientID() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket subscribers organized by ledger client.
// It is safe for concurrent use.
type Hub struct {
	// clients maps ledger client ID to a map of subscriber ID to subscriber
	clients map[string]map[string]Subscriber
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[string]Subscriber),
	}
}

// Register adds a subscriber to the hub under its ledger client
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientID := sub.LedgerClientID()
	if h.clients[clientID] == nil {
		h.clients[clientID] = make(map[string]Subscriber)
	}
	h.clients[clientID][sub.ID()] = sub

	log.Debug().
		Str("client_id", clientID).
		Str("subscriber_id", sub.ID()).
		Msg("WebSocket subscriber registered")
}

// Unregister removes a subscriber from the hub
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientID := sub.LedgerClientID()
	subs, ok := h.clients[clientID]
	if !ok {
		return
	}
	if _, exists := subs[sub.ID()]; !exists {
		return
	}

	delete(subs, sub.ID())
	if len(subs) == 0 {
		delete(h.clients, clientID)
	}

	log.Debug().
		Str("client_id", clientID).
		Str("subscriber_id", sub.ID()).
		Msg("WebSocket subscriber unregistered")
}

// Broadcast sends an event to every subscriber of a ledger client
func (h *Hub) Broadcast(clientID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("client_id", clientID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	subs, ok := h.clients[clientID]
	if !ok || len(subs) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy subscribers to avoid holding lock during send
	targets := make([]Subscriber, 0, len(subs))
	for _, sub := range subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		go func(s Subscriber) {
			if err := s.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", clientID).
					Str("subscriber_id", s.ID()).
					Msg("Failed to send to subscriber")
			}
		}(sub)
	}

	log.Debug().
		Str("client_id", clientID).
		Str("event_type", event.Type).
		Int("subscriber_count", len(targets)).
		Msg("Broadcast event")
}

// SubscriberCount returns the number of subscribers for a ledger client
func (h *Hub) SubscriberCount(clientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clientID])
}

// TotalSubscriberCount returns the number of subscribers across all clients
func (h *Hub) TotalSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.clients {
		total += len(subs)
	}
	return total
}
