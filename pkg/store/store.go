package store

import (
	"context"

	"librarydesk/pkg/domain"
)

// Store defines persistence operations for the catalog, the order ledger,
// and the conversation log.
type Store interface {
	// catalog
	SaveBook(ctx context.Context, b domain.Book) error
	GetBook(ctx context.Context, isbn string) (domain.Book, bool, error)
	FindBooks(ctx context.Context, field domain.SearchField, query string) ([]domain.Book, error)
	AddStock(ctx context.Context, isbn string, qty int) (domain.StockLevel, bool, error)
	UpdatePrice(ctx context.Context, isbn string, price float64) (int64, error)
	ListLowStock(ctx context.Context, threshold int) ([]domain.StockLevel, error)

	// customers
	SaveCustomer(ctx context.Context, c domain.Customer) error

	// orders
	CreateOrder(ctx context.Context, customerID int64) (int64, error)
	FulfillItem(ctx context.Context, orderID int64, isbn string, qty int) (domain.FulfilledItem, bool, error)
	OrderStatus(ctx context.Context, orderID int64) ([]domain.OrderStatusRow, error)

	// conversations
	AppendMessage(ctx context.Context, msg domain.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
	ListSessions(ctx context.Context) ([]string, error)
}
