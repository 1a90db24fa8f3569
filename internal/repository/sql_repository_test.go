package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/unclebandit/xeno-crm/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm.db")
	store, err := Open(context.Background(), "sqlite://"+path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLCustomers_UpsertAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	spend := 150.5
	visits := int64(3)
	last := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	in := model.Customer{
		ID: "c1", Name: "Alice", Email: "alice@example.com",
		TotalSpend: &spend, VisitCount: &visits, LastActive: &last,
		Location: "Nairobi",
	}
	if err := store.Customers.Upsert(ctx, in); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Customers.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected customer, got nil")
	}
	if *got.TotalSpend != spend || *got.VisitCount != visits || !got.LastActive.Equal(last) {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Location != "Nairobi" || got.Device != "" {
		t.Errorf("unexpected optional fields: %+v", got)
	}

	// Replace with a record that drops the optional numbers.
	if err := store.Customers.Upsert(ctx, model.Customer{ID: "c1", Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	all, err := store.Customers.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 customer after re-ingest, got %d", len(all))
	}
	if all[0].TotalSpend != nil || all[0].LastActive != nil {
		t.Errorf("expected cleared optional fields, got %+v", all[0])
	}

	missing, err := store.Customers.GetByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestSQLOrders(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	date := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	_ = store.Orders.Upsert(ctx, model.Order{OrderID: "o2", CustomerID: "c1", Amount: 20})
	_ = store.Orders.Upsert(ctx, model.Order{OrderID: "o1", CustomerID: "c1", Amount: 10, Date: &date})
	_ = store.Orders.Upsert(ctx, model.Order{OrderID: "o3", CustomerID: "c2", Amount: 30})
	_ = store.Orders.Upsert(ctx, model.Order{OrderID: "o2", CustomerID: "c1", Amount: 25})

	orders, err := store.Orders.ListByCustomer(ctx, "c1")
	if err != nil {
		t.Fatalf("ListByCustomer() error = %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].OrderID != "o1" || !orders[0].Date.Equal(date) {
		t.Errorf("unexpected first order: %+v", orders[0])
	}
	if orders[1].Amount != 25 || orders[1].Date != nil {
		t.Errorf("expected o2 replaced with amount 25, got %+v", orders[1])
	}
}

func TestSQLOutcomes_UpsertByPair(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	writes := []model.DeliveryOutcome{
		{CampaignID: "camp1", CustomerID: "c1", Status: model.StatusFailed, Subject: "Sale", Timestamp: ts},
		{CampaignID: "camp1", CustomerID: "c2", Status: model.StatusSent, Subject: "Sale", Timestamp: ts},
		{CampaignID: "camp1", CustomerID: "c1", Status: model.StatusSent, Subject: "Sale", Timestamp: ts.Add(time.Minute)},
	}
	for _, w := range writes {
		if err := store.Outcomes.Upsert(ctx, w); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	all, err := store.Outcomes.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(all))
	}
	if all[0].CustomerID != "c1" || all[0].Status != model.StatusSent || !all[0].Timestamp.Equal(ts.Add(time.Minute)) {
		t.Errorf("expected overwritten c1 outcome, got %+v", all[0])
	}
}

func TestSQLSegments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seg := model.Segment{
		ID:         "seg1",
		Name:       "Big spenders",
		Combinator: model.CombinatorAnd,
		Conditions: []model.Condition{{Field: "spent", Operator: "gt", Value: "100"}},
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Segments.Create(ctx, seg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := store.Segments.GetByID(ctx, "seg1")
	if err != nil || got == nil {
		t.Fatalf("GetByID() = %v, %v", got, err)
	}
	if got.Combinator != model.CombinatorAnd || len(got.Conditions) != 1 || got.Conditions[0].Value != "100" {
		t.Errorf("unexpected segment: %+v", got)
	}

	list, err := store.Segments.List(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("List() = %v, %v", list, err)
	}
}

func TestOpen_RejectsUnknownScheme(t *testing.T) {
	if _, err := Open(context.Background(), "mysql://localhost/crm"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
	store, err := Open(context.Background(), "memory://")
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
