package domain

import "time"

// SearchField selects which catalog column a search matches against.
type SearchField string

const (
	SearchByTitle  SearchField = "title"
	SearchByAuthor SearchField = "author"
)

type Book struct {
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OrderLine struct {
	OrderID  int64  `json:"orderId"`
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

// OrderItem is one requested (isbn, quantity) pair in an order placement call.
type OrderItem struct {
	ISBN     string `json:"isbn"`
	Quantity int    `json:"qty"`
}

// FulfilledItem reports one order line that passed the stock check.
type FulfilledItem struct {
	Title    string `json:"title"`
	NewStock int    `json:"new_stock"`
}

// OrderReceipt is the result of an order placement call. ItemsProcessed may
// be shorter than the requested items: unavailable items are skipped.
type OrderReceipt struct {
	OrderID        int64           `json:"order_id"`
	ItemsProcessed []FulfilledItem `json:"items_processed"`
	Status         string          `json:"status"`
}

// StockLevel projects a book to its title and current stock.
type StockLevel struct {
	Title string `json:"title"`
	Stock int    `json:"stock"`
}

// OrderStatusRow is one line of the order status join.
type OrderStatusRow struct {
	OrderID  int64  `json:"id"`
	Customer string `json:"customer"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

type Message struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ToolCall records one operation the dispatch layer invoked during a turn.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}
