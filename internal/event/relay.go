// Package event publishes cart changes to Kafka.
package event

import (
	"context"
	"log/slog"

	"github.com/tgiffonirs/gomarketplace/internal/cart"
	"github.com/tgiffonirs/gomarketplace/pkg/logger"
)

// Source is what the relay listens to; *cart.Store satisfies it.
type Source interface {
	Key() string
	Subscribe() (<-chan cart.Update, func())
}

// Relay forwards every cart update to a Producer. Publishing is best effort:
// failures are logged and never affect the cart.
type Relay struct {
	key      string
	updates  <-chan cart.Update
	cancel   func()
	producer *Producer
	logger   *slog.Logger
}

// NewRelay subscribes to src right away so no update between construction
// and Run is lost.
func NewRelay(src Source, producer *Producer, logger *slog.Logger) *Relay {
	updates, cancel := src.Subscribe()
	return &Relay{
		key:      src.Key(),
		updates:  updates,
		cancel:   cancel,
		producer: producer,
		logger:   logger,
	}
}

// Run publishes updates until ctx is done or the source closes the
// subscription.
func (r *Relay) Run(ctx context.Context) {
	defer r.cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-r.updates:
			if !ok {
				return
			}
			uctx := ctx
			if u.CorrelationID != "" {
				uctx = logger.WithCorrelationID(ctx, u.CorrelationID)
			}
			if err := r.producer.PublishCartUpdated(uctx, r.key, u); err != nil {
				logger.WithContext(uctx, r.logger).ErrorContext(uctx, "failed to relay cart update",
					slog.String("key", r.key),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
