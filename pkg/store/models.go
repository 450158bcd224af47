package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type BookModel struct {
	ISBN      string    `gorm:"primaryKey;column:isbn"`
	Title     string    `gorm:"not null"`
	Author    string    `gorm:"not null;index"`
	Price     float64   `gorm:"not null"`
	Stock     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

func (BookModel) TableName() string { return "books" }

type CustomerModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (CustomerModel) TableName() string { return "customers" }

type OrderModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	CustomerID int64     `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (OrderModel) TableName() string { return "orders" }

type OrderItemModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	OrderID  int64  `gorm:"not null;index"`
	ISBN     string `gorm:"not null;column:isbn"`
	Quantity int    `gorm:"not null"`
}

func (OrderItemModel) TableName() string { return "order_items" }

type MessageModel struct {
	ID        string         `gorm:"primaryKey"`
	SessionID string         `gorm:"not null;index"`
	Role      string         `gorm:"not null"`
	Content   string         `gorm:"not null"`
	ToolCalls datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func (MessageModel) TableName() string { return "messages" }
