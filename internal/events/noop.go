// Package events holds event publishers for ledger statements.
package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// NoopPublisher discards events; used when no broker is configured
type NoopPublisher struct{}

// Publish logs the event key at debug level and drops the event
func (NoopPublisher) Publish(_ context.Context, key string, _ any) error {
	log.Debug().Str("key", key).Msg("Event publishing disabled, dropping event")
	return nil
}
