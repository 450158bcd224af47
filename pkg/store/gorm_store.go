package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"librarydesk/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&BookModel{}, &CustomerModel{}, &OrderModel{}, &OrderItemModel{}, &MessageModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveBook stores or updates a catalog record.
func (s *GormStore) SaveBook(ctx context.Context, b domain.Book) error {
	model := bookToModel(b)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "isbn"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "author", "price", "stock", "updated_at"}),
	}).Create(&model).Error
}

// GetBook retrieves a book by ISBN.
func (s *GormStore) GetBook(ctx context.Context, isbn string) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.WithContext(ctx).First(&model, "isbn = ?", isbn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// FindBooks matches a query fragment against title or author with LIKE
// wildcards on both sides. Any field other than title searches author.
func (s *GormStore) FindBooks(ctx context.Context, field domain.SearchField, query string) ([]domain.Book, error) {
	column := "author"
	if field == domain.SearchByTitle {
		column = "title"
	}
	var models []BookModel
	if err := s.db.WithContext(ctx).
		Where(column+" LIKE ?", "%"+query+"%").
		Order("isbn ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// AddStock atomically adds qty to a book's stock. The second return is false
// when no book matches the ISBN; qty may be negative.
func (s *GormStore) AddStock(ctx context.Context, isbn string, qty int) (domain.StockLevel, bool, error) {
	var level domain.StockLevel
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BookModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "isbn = ?", isbn).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		newStock := model.Stock + qty
		if err := tx.Model(&BookModel{}).
			Where("isbn = ?", isbn).
			Updates(map[string]any{"stock": newStock, "updated_at": time.Now().UTC()}).Error; err != nil {
			return err
		}
		level = domain.StockLevel{Title: model.Title, Stock: newStock}
		found = true
		return nil
	})
	if err != nil {
		return domain.StockLevel{}, false, err
	}
	return level, found, nil
}

// UpdatePrice overwrites a book's price and returns the number of rows
// affected. Updating an unknown ISBN affects zero rows and is not an error.
func (s *GormStore) UpdatePrice(ctx context.Context, isbn string, price float64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&BookModel{}).
		Where("isbn = ?", isbn).
		Updates(map[string]any{"price": price, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ListLowStock returns every book with stock strictly below threshold.
func (s *GormStore) ListLowStock(ctx context.Context, threshold int) ([]domain.StockLevel, error) {
	var models []BookModel
	if err := s.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("isbn ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.StockLevel, 0, len(models))
	for _, m := range models {
		res = append(res, domain.StockLevel{Title: m.Title, Stock: m.Stock})
	}
	return res, nil
}

// SaveCustomer stores or updates a customer record.
func (s *GormStore) SaveCustomer(ctx context.Context, c domain.Customer) error {
	model := CustomerModel{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&model).Error
}

// CreateOrder inserts an order bound to the customer and returns its
// generated identifier.
func (s *GormStore) CreateOrder(ctx context.Context, customerID int64) (int64, error) {
	model := OrderModel{CustomerID: customerID, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return model.ID, nil
}

// FulfillItem runs the check-insert-decrement sequence for one requested
// item as a single row-locked transaction. The second return is false when
// the book is unknown or stock is insufficient; the caller skips the item.
func (s *GormStore) FulfillItem(ctx context.Context, orderID int64, isbn string, qty int) (domain.FulfilledItem, bool, error) {
	var item domain.FulfilledItem
	fulfilled := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BookModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "isbn = ?", isbn).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		if model.Stock < qty {
			return nil
		}
		line := OrderItemModel{OrderID: orderID, ISBN: isbn, Quantity: qty}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		newStock := model.Stock - qty
		if err := tx.Model(&BookModel{}).
			Where("isbn = ?", isbn).
			Updates(map[string]any{"stock": newStock, "updated_at": time.Now().UTC()}).Error; err != nil {
			return err
		}
		item = domain.FulfilledItem{Title: model.Title, NewStock: newStock}
		fulfilled = true
		return nil
	})
	if err != nil {
		return domain.FulfilledItem{}, false, err
	}
	return item, fulfilled, nil
}

// OrderStatus joins orders, customers, order lines, and books into one row
// per line. An order with no lines and an unknown order both yield an empty
// result.
func (s *GormStore) OrderStatus(ctx context.Context, orderID int64) ([]domain.OrderStatusRow, error) {
	var rows []domain.OrderStatusRow
	if err := s.db.WithContext(ctx).
		Table("orders o").
		Select("o.id AS order_id, c.name AS customer, b.title AS title, oi.quantity AS quantity").
		Joins("JOIN customers c ON o.customer_id = c.id").
		Joins("JOIN order_items oi ON o.id = oi.order_id").
		Joins("JOIN books b ON oi.isbn = b.isbn").
		Where("o.id = ?", orderID).
		Order("oi.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.OrderStatusRow{}
	}
	return rows, nil
}

// AppendMessage records a conversation message.
func (s *GormStore) AppendMessage(ctx context.Context, msg domain.Message) error {
	model := messageToModel(msg)
	return s.db.WithContext(ctx).Create(&model).Error
}

// ListMessages returns a session's messages in creation-time order.
func (s *GormStore) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var models []MessageModel
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(models))
	for _, m := range models {
		msgs = append(msgs, messageFromModel(m))
	}
	return msgs, nil
}

// ListSessions returns distinct session identifiers, most recent first.
func (s *GormStore) ListSessions(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&MessageModel{}).
		Select("session_id").
		Group("session_id").
		Order("MAX(created_at) DESC").
		Pluck("session_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func bookToModel(b domain.Book) BookModel {
	return BookModel{
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price,
		Stock:     b.Stock,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		ISBN:      m.ISBN,
		Title:     m.Title,
		Author:    m.Author,
		Price:     m.Price,
		Stock:     m.Stock,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func messageToModel(msg domain.Message) MessageModel {
	var rawCalls []byte
	if len(msg.ToolCalls) > 0 {
		rawCalls, _ = json.Marshal(msg.ToolCalls)
	}
	return MessageModel{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		ToolCalls: rawCalls,
		CreatedAt: msg.CreatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	var calls []domain.ToolCall
	if len(m.ToolCalls) > 0 {
		_ = json.Unmarshal(m.ToolCalls, &calls)
	}
	return domain.Message{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		ToolCalls: calls,
		CreatedAt: m.CreatedAt,
	}
}
