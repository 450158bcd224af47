package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"librarydesk/pkg/domain"
)

func TestMemoryStoreMessageOrderingPerSession(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		msg := domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			SessionID: "s1",
			Role:      "user",
			Content:   fmt.Sprintf("turn %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := mem.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := mem.ListMessages(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, msg := range msgs {
		if msg.Content != fmt.Sprintf("turn %d", i) {
			t.Fatalf("message %d out of order: %q", i, msg.Content)
		}
	}
}

func TestMemoryStoreListSessionsMostRecentFirst(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	record := func(session, id string) {
		t.Helper()
		if err := mem.AppendMessage(ctx, domain.Message{ID: id, SessionID: session, Role: "user", Content: "hi", CreatedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	record("s1", "a")
	record("s2", "b")
	record("s1", "c") // s1 becomes the most recent again

	ids, err := mem.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Fatalf("unexpected session order: %v", ids)
	}
}

func TestMemoryStoreFulfillItemSkipsAndDecrements(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	if err := mem.SaveBook(ctx, domain.Book{ISBN: "X", Title: "Dune", Stock: 2}); err != nil {
		t.Fatalf("save: %v", err)
	}
	orderID, err := mem.CreateOrder(ctx, 1)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, ok, _ := mem.FulfillItem(ctx, orderID, "X", 3); ok {
		t.Fatalf("fulfillment must be skipped when stock is short")
	}
	item, ok, err := mem.FulfillItem(ctx, orderID, "X", 2)
	if err != nil || !ok {
		t.Fatalf("fulfill: ok=%v err=%v", ok, err)
	}
	if item.NewStock != 0 {
		t.Fatalf("expected stock 0, got %d", item.NewStock)
	}
	if _, ok, _ := mem.FulfillItem(ctx, orderID, "X", 1); ok {
		t.Fatalf("stock must never go negative")
	}
}

func TestMemoryStoreAddStockAllowsNegativeDelta(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	if err := mem.SaveBook(ctx, domain.Book{ISBN: "X", Title: "Dune", Stock: 5}); err != nil {
		t.Fatalf("save: %v", err)
	}

	level, ok, err := mem.AddStock(ctx, "X", -2)
	if err != nil || !ok {
		t.Fatalf("add stock: ok=%v err=%v", ok, err)
	}
	if level.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", level.Stock)
	}
	if _, ok, _ := mem.AddStock(ctx, "missing", 1); ok {
		t.Fatalf("unknown isbn must report not found")
	}
}

func TestMemoryStoreUpdatePriceRowsAffected(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	if err := mem.SaveBook(ctx, domain.Book{ISBN: "X", Title: "Dune", Price: 10}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if n, err := mem.UpdatePrice(ctx, "X", 12.5); err != nil || n != 1 {
		t.Fatalf("update price: n=%d err=%v", n, err)
	}
	if n, err := mem.UpdatePrice(ctx, "Y", 12.5); err != nil || n != 0 {
		t.Fatalf("unknown isbn must affect zero rows: n=%d err=%v", n, err)
	}
}
