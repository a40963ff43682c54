package events

import (
	"context"
	"errors"

	"github.com/lumenedit/ledger-api/internal/domain"
)

// Fanout publishes every event to all of its publishers
type Fanout []domain.EventPublisher

// Publish delivers the event to each publisher and joins their errors
func (f Fanout) Publish(ctx context.Context, key string, event any) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, key, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
