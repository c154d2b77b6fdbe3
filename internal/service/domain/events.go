package domain

import (
	"context"

	"go.uber.org/zap"

	"github.com/qs-lzh/coaster-review/internal/mq"
)

// EventPublisher sends catalog events. *mq.Producer implements it.
type EventPublisher interface {
	Publish(ctx context.Context, event mq.CatalogEvent) error
}

// publish is best effort: readers stay correct through synchronous cache
// invalidation, the event only re-warms the cache.
func publish(ctx context.Context, p EventPublisher, logger *zap.Logger, event mq.CatalogEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish catalog event",
			zap.String("kind", string(event.Kind)),
			zap.Uint("park_id", event.ParkID),
			zap.Uint("coaster_id", event.CoasterID),
			zap.Error(err),
		)
	}
}
