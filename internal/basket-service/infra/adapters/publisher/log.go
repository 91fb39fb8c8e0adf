// Package publisher delivers checkout events. Broker delivery is not wired;
// LogPublisher records every event as a structured log line.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishBasketCheckout(ctx context.Context, event domain.BasketCheckoutEvent) error {
	// Card details never reach the logs.
	event.CardNumber, event.CVV = "", ""
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publisher: encode checkout event %s: %w", event.EventID, err)
	}
	p.logger.InfoContext(ctx, "basket checkout event published",
		"event_id", event.EventID,
		"user_name", event.UserName,
		"total_price", event.TotalPrice.StringFixed(2),
		"payload", string(payload),
	)
	return nil
}
