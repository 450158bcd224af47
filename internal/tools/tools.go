package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"librarydesk/pkg/domain"
	"librarydesk/pkg/events"
	"librarydesk/pkg/store"
)

// LowStockThreshold is the cutoff below which a book appears in the
// inventory summary.
const LowStockThreshold = 5

// ErrUnknownTool is returned when the dispatch layer asks for a tool that
// was never declared.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// Registry exposes the inventory and order operations as named, callable
// tools over the backing store.
type Registry struct {
	store     store.Store
	publisher events.Publisher
}

// NewRegistry wires the tool set to a store. publisher may be nil; order
// events are then not emitted.
func NewRegistry(dataStore store.Store, publisher events.Publisher) *Registry {
	return &Registry{store: dataStore, publisher: publisher}
}

// Invoke runs the named tool with JSON arguments and returns the result
// serialized as JSON for the dispatch layer.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	result, err := r.invoke(ctx, name, arguments)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", name, err)
	}
	return string(raw), nil
}

func (r *Registry) invoke(ctx context.Context, name, arguments string) (any, error) {
	switch name {
	case "find_books":
		var args findBooksArgs
		if err := decodeArgs(name, arguments, &args); err != nil {
			return nil, err
		}
		return r.FindBooks(ctx, args.QueryStr, args.SearchBy)
	case "create_order":
		var args createOrderArgs
		if err := decodeArgs(name, arguments, &args); err != nil {
			return nil, err
		}
		return r.CreateOrder(ctx, args.CustomerID, args.Items)
	case "restock_book":
		var args restockArgs
		if err := decodeArgs(name, arguments, &args); err != nil {
			return nil, err
		}
		level, ok, err := r.RestockBook(ctx, args.ISBN, args.Qty)
		if err != nil {
			return nil, err
		}
		if !ok {
			return "Book not found.", nil
		}
		return level, nil
	case "update_price":
		var args updatePriceArgs
		if err := decodeArgs(name, arguments, &args); err != nil {
			return nil, err
		}
		return r.UpdatePrice(ctx, args.ISBN, args.Price)
	case "order_status":
		var args orderStatusArgs
		if err := decodeArgs(name, arguments, &args); err != nil {
			return nil, err
		}
		return r.OrderStatus(ctx, args.OrderID)
	case "inventory_summary":
		return r.InventorySummary(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func decodeArgs(name, arguments string, into any) error {
	if strings.TrimSpace(arguments) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(arguments), into); err != nil {
		return fmt.Errorf("decode %s arguments: %w", name, err)
	}
	return nil
}

// FindBooks searches the catalog by title or author. An absent selector
// defaults to title; any other non-title value searches author.
func (r *Registry) FindBooks(ctx context.Context, query, searchBy string) ([]domain.Book, error) {
	searchBy = strings.TrimSpace(searchBy)
	field := domain.SearchByAuthor
	if searchBy == "" || strings.EqualFold(searchBy, "title") {
		field = domain.SearchByTitle
	}
	books, err := r.store.FindBooks(ctx, field, query)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	return books, nil
}

// CreateOrder registers an order and fulfills each requested item
// independently. Items whose book is unknown or whose stock is insufficient
// are skipped without error; the receipt lists only fulfilled lines.
func (r *Registry) CreateOrder(ctx context.Context, customerID int64, items []domain.OrderItem) (domain.OrderReceipt, error) {
	orderID, err := r.store.CreateOrder(ctx, customerID)
	if err != nil {
		return domain.OrderReceipt{}, err
	}

	fulfilled := make([]domain.FulfilledItem, 0, len(items))
	for _, item := range items {
		line, ok, err := r.store.FulfillItem(ctx, orderID, item.ISBN, item.Quantity)
		if err != nil {
			return domain.OrderReceipt{}, fmt.Errorf("fulfill item %s: %w", item.ISBN, err)
		}
		if !ok {
			continue
		}
		fulfilled = append(fulfilled, line)
	}

	receipt := domain.OrderReceipt{
		OrderID:        orderID,
		ItemsProcessed: fulfilled,
		Status:         "Order placed successfully",
	}
	if r.publisher != nil {
		if err := r.publisher.PublishOrderCreated(ctx, events.OrderCreated{
			OrderID:    orderID,
			CustomerID: customerID,
			Items:      fulfilled,
		}); err != nil {
			slog.Warn("publish order event failed", "order_id", orderID, "err", err)
		}
	}
	return receipt, nil
}

// RestockBook adds qty to the book's stock. The second return is false when
// the ISBN matches no book; qty may be negative.
func (r *Registry) RestockBook(ctx context.Context, isbn string, qty int) (domain.StockLevel, bool, error) {
	level, ok, err := r.store.AddStock(ctx, isbn, qty)
	if err != nil {
		return domain.StockLevel{}, false, fmt.Errorf("restock %s: %w", isbn, err)
	}
	return level, ok, nil
}

// UpdatePrice overwrites the book's price and returns a confirmation
// string. An unknown ISBN affects zero rows but still confirms.
func (r *Registry) UpdatePrice(ctx context.Context, isbn string, price float64) (string, error) {
	if _, err := r.store.UpdatePrice(ctx, isbn, price); err != nil {
		return "", fmt.Errorf("update price %s: %w", isbn, err)
	}
	return fmt.Sprintf("Price for %s updated to $%v", isbn, price), nil
}

// OrderStatus returns one row per order line joined with customer and book
// details. Unknown orders and orders without lines both yield an empty set.
func (r *Registry) OrderStatus(ctx context.Context, orderID int64) ([]domain.OrderStatusRow, error) {
	rows, err := r.store.OrderStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order status %d: %w", orderID, err)
	}
	return rows, nil
}

// InventorySummary lists every book with stock below the low-stock
// threshold.
func (r *Registry) InventorySummary(ctx context.Context) ([]domain.StockLevel, error) {
	levels, err := r.store.ListLowStock(ctx, LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("inventory summary: %w", err)
	}
	return levels, nil
}

type findBooksArgs struct {
	QueryStr string `json:"query_str"`
	SearchBy string `json:"search_by"`
}

type createOrderArgs struct {
	CustomerID int64              `json:"customer_id"`
	Items      []domain.OrderItem `json:"items"`
}

type restockArgs struct {
	ISBN string `json:"isbn"`
	Qty  int    `json:"qty"`
}

type updatePriceArgs struct {
	ISBN  string  `json:"isbn"`
	Price float64 `json:"price"`
}

type orderStatusArgs struct {
	OrderID int64 `json:"order_id"`
}
