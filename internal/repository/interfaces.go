package repository

import (
	"context"

	"github.com/unclebandit/xeno-crm/internal/model"
)

// CustomerRepositoryInterface stores customers keyed by ID. Upsert replaces the whole record.
type CustomerRepositoryInterface interface {
	Upsert(ctx context.Context, c model.Customer) error
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	ListAll(ctx context.Context) ([]model.Customer, error)
}

// OrderRepositoryInterface stores orders keyed by OrderID.
type OrderRepositoryInterface interface {
	Upsert(ctx context.Context, o model.Order) error
	ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error)
}

// OutcomeRepositoryInterface stores one delivery outcome per (campaign, customer) pair.
type OutcomeRepositoryInterface interface {
	Upsert(ctx context.Context, o model.DeliveryOutcome) error
	// ListAll returns every outcome in the store's stable iteration order.
	ListAll(ctx context.Context) ([]model.DeliveryOutcome, error)
}

// SegmentRepositoryInterface stores saved segment definitions.
type SegmentRepositoryInterface interface {
	Create(ctx context.Context, s model.Segment) error
	GetByID(ctx context.Context, id string) (*model.Segment, error)
	List(ctx context.Context) ([]model.Segment, error)
}
