package events

import (
	"context"

	"librarydesk/pkg/domain"
)

// OrderCreated announces a successfully placed order to back-office
// consumers. Items lists only fulfilled lines.
type OrderCreated struct {
	OrderID    int64                  `json:"order_id"`
	CustomerID int64                  `json:"customer_id"`
	Items      []domain.FulfilledItem `json:"items"`
}

// Publisher emits order events. Publishing is best-effort: callers log
// failures and never fail the order on them.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, evt OrderCreated) error
	Close() error
}
