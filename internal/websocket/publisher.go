package websocket

import (
	"context"

	"github.com/lumenedit/ledger-api/internal/domain"
)

// Ensure Hub implements domain.EventPublisher
var _ domain.EventPublisher = (*Hub)(nil)

// Publish broadcasts the event to subscribers of the ledger client named by key
func (h *Hub) Publish(_ context.Context, key string, event any) error {
	h.Broadcast(key, eventFor(event))
	return nil
}
