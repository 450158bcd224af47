package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"librarydesk/pkg/domain"
)

// MemoryStore keeps catalog, ledger, and conversation state in-process.
// Used by tests and local development without Postgres.
type MemoryStore struct {
	mu        sync.Mutex
	books     map[string]domain.Book
	bookOrder []string
	customers map[int64]domain.Customer
	orders    map[int64]domain.Order
	lines     map[int64][]domain.OrderLine
	messages  map[string][]domain.Message
	sessions  []string
	nextOrder int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:     make(map[string]domain.Book),
		customers: make(map[int64]domain.Customer),
		orders:    make(map[int64]domain.Order),
		lines:     make(map[int64][]domain.OrderLine),
		messages:  make(map[string][]domain.Message),
		nextOrder: 1,
	}
}

// SaveBook stores or replaces a book record and tracks insertion order.
func (m *MemoryStore) SaveBook(_ context.Context, b domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.books[b.ISBN]; !exists {
		m.bookOrder = append(m.bookOrder, b.ISBN)
	}
	m.books[b.ISBN] = b
	return nil
}

// GetBook retrieves a book by ISBN.
func (m *MemoryStore) GetBook(_ context.Context, isbn string) (domain.Book, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	return b, ok, nil
}

// FindBooks matches a query fragment as a substring of title or author.
func (m *MemoryStore) FindBooks(_ context.Context, field domain.SearchField, query string) ([]domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]domain.Book, 0)
	for _, isbn := range sortedISBNs(m.bookOrder) {
		b := m.books[isbn]
		value := b.Author
		if field == domain.SearchByTitle {
			value = b.Title
		}
		if strings.Contains(value, query) {
			res = append(res, b)
		}
	}
	return res, nil
}

// AddStock adds qty to a book's stock under the store lock.
func (m *MemoryStore) AddStock(_ context.Context, isbn string, qty int) (domain.StockLevel, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok {
		return domain.StockLevel{}, false, nil
	}
	b.Stock += qty
	b.UpdatedAt = time.Now().UTC()
	m.books[isbn] = b
	return domain.StockLevel{Title: b.Title, Stock: b.Stock}, true, nil
}

// UpdatePrice overwrites a book's price, reporting rows affected.
func (m *MemoryStore) UpdatePrice(_ context.Context, isbn string, price float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok {
		return 0, nil
	}
	b.Price = price
	b.UpdatedAt = time.Now().UTC()
	m.books[isbn] = b
	return 1, nil
}

// ListLowStock returns books with stock strictly below threshold.
func (m *MemoryStore) ListLowStock(_ context.Context, threshold int) ([]domain.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]domain.StockLevel, 0)
	for _, isbn := range sortedISBNs(m.bookOrder) {
		b := m.books[isbn]
		if b.Stock < threshold {
			res = append(res, domain.StockLevel{Title: b.Title, Stock: b.Stock})
		}
	}
	return res, nil
}

// SaveCustomer stores or replaces a customer record.
func (m *MemoryStore) SaveCustomer(_ context.Context, c domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
	return nil
}

// CreateOrder mints the next order identifier for the customer.
func (m *MemoryStore) CreateOrder(_ context.Context, customerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextOrder
	m.nextOrder++
	m.orders[id] = domain.Order{ID: id, CustomerID: customerID, CreatedAt: time.Now().UTC()}
	return id, nil
}

// FulfillItem runs the check-insert-decrement sequence under the store lock.
func (m *MemoryStore) FulfillItem(_ context.Context, orderID int64, isbn string, qty int) (domain.FulfilledItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok || b.Stock < qty {
		return domain.FulfilledItem{}, false, nil
	}
	m.lines[orderID] = append(m.lines[orderID], domain.OrderLine{OrderID: orderID, ISBN: isbn, Quantity: qty})
	b.Stock -= qty
	b.UpdatedAt = time.Now().UTC()
	m.books[isbn] = b
	return domain.FulfilledItem{Title: b.Title, NewStock: b.Stock}, true, nil
}

// OrderStatus returns one row per order line, empty when the order has no
// lines or does not exist.
func (m *MemoryStore) OrderStatus(_ context.Context, orderID int64) ([]domain.OrderStatusRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]domain.OrderStatusRow, 0)
	order, ok := m.orders[orderID]
	if !ok {
		return rows, nil
	}
	customer := m.customers[order.CustomerID]
	for _, line := range m.lines[orderID] {
		rows = append(rows, domain.OrderStatusRow{
			OrderID:  orderID,
			Customer: customer.Name,
			Title:    m.books[line.ISBN].Title,
			Quantity: line.Quantity,
		})
	}
	return rows, nil
}

// AppendMessage records a message in arrival order for its session.
func (m *MemoryStore) AppendMessage(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.messages[msg.SessionID]; !seen {
		m.sessions = append(m.sessions, msg.SessionID)
	} else {
		// Move the session to the most-recent end of the list.
		for i, id := range m.sessions {
			if id == msg.SessionID {
				m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
				break
			}
		}
		m.sessions = append(m.sessions, msg.SessionID)
	}
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], msg)
	return nil
}

// ListMessages returns a session's messages in append order.
func (m *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[sessionID]
	res := make([]domain.Message, len(msgs))
	copy(res, msgs)
	return res, nil
}

// ListSessions returns distinct session identifiers, most recent first.
func (m *MemoryStore) ListSessions(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]string, 0, len(m.sessions))
	for i := len(m.sessions) - 1; i >= 0; i-- {
		res = append(res, m.sessions[i])
	}
	return res, nil
}

func sortedISBNs(order []string) []string {
	res := make([]string, len(order))
	copy(res, order)
	sort.Strings(res)
	return res
}
