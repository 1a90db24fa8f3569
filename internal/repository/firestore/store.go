// Package firestore stores CRM records in Cloud Firestore. Each record kind
// lives in its own collection and is keyed by the record's natural ID, so
// Set gives upsert semantics without a read.
package firestore

import (
	"context"
	"fmt"
	"time"

	gcfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/unclebandit/xeno-crm/internal/model"
)

const (
	customersCollection = "customers"
	ordersCollection    = "orders"
	outcomesCollection  = "communication_log"
	segmentsCollection  = "segments"
)

// Client wraps a Firestore connection shared by the repositories.
type Client struct {
	fs *gcfs.Client
}

// NewClient connects to projectID. FIRESTORE_EMULATOR_HOST is honored by the SDK.
func NewClient(ctx context.Context, projectID string) (*Client, error) {
	fs, err := gcfs.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &Client{fs: fs}, nil
}

func (c *Client) Close() error {
	return c.fs.Close()
}

func (c *Client) Customers() *Customers { return &Customers{col: c.fs.Collection(customersCollection)} }
func (c *Client) Orders() *Orders       { return &Orders{col: c.fs.Collection(ordersCollection)} }
func (c *Client) Outcomes() *Outcomes   { return &Outcomes{col: c.fs.Collection(outcomesCollection)} }
func (c *Client) Segments() *Segments   { return &Segments{col: c.fs.Collection(segmentsCollection)} }

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// collect drains a document iterator, decoding each document into T.
func collect[T any](it *gcfs.DocumentIterator) ([]T, error) {
	defer it.Stop()
	out := []T{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document %s: %w", doc.Ref.ID, err)
		}
		out = append(out, v)
	}
}

type customerDoc struct {
	ID         string     `firestore:"id"`
	Name       string     `firestore:"name"`
	Email      string     `firestore:"email"`
	TotalSpend *float64   `firestore:"totalSpend"`
	VisitCount *int64     `firestore:"visitCount"`
	LastActive *time.Time `firestore:"lastActive"`
	Location   string     `firestore:"location"`
	Device     string     `firestore:"device"`
	Source     string     `firestore:"source"`
	UpdatedAt  time.Time  `firestore:"updatedAt"`
}

type Customers struct {
	col *gcfs.CollectionRef
}

func (s *Customers) Upsert(ctx context.Context, c model.Customer) error {
	_, err := s.col.Doc(c.ID).Set(ctx, customerDoc{
		ID: c.ID, Name: c.Name, Email: c.Email,
		TotalSpend: c.TotalSpend, VisitCount: c.VisitCount, LastActive: c.LastActive,
		Location: c.Location, Device: c.Device, Source: c.Source,
		UpdatedAt: time.Now().UTC(),
	})
	return err
}

func (s *Customers) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	snap, err := s.col.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var d customerDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer %s: %w", id, err)
	}
	c := d.toModel()
	return &c, nil
}

func (s *Customers) ListAll(ctx context.Context) ([]model.Customer, error) {
	docs, err := collect[customerDoc](s.col.OrderBy(gcfs.DocumentID, gcfs.Asc).Documents(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]model.Customer, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (d customerDoc) toModel() model.Customer {
	return model.Customer{
		ID: d.ID, Name: d.Name, Email: d.Email,
		TotalSpend: d.TotalSpend, VisitCount: d.VisitCount, LastActive: d.LastActive,
		Location: d.Location, Device: d.Device, Source: d.Source,
	}
}

type orderDoc struct {
	OrderID    string     `firestore:"orderId"`
	CustomerID string     `firestore:"customerId"`
	Amount     float64    `firestore:"amount"`
	Date       *time.Time `firestore:"date"`
	UpdatedAt  time.Time  `firestore:"updatedAt"`
}

type Orders struct {
	col *gcfs.CollectionRef
}

func (s *Orders) Upsert(ctx context.Context, o model.Order) error {
	_, err := s.col.Doc(o.OrderID).Set(ctx, orderDoc{
		OrderID: o.OrderID, CustomerID: o.CustomerID, Amount: o.Amount, Date: o.Date,
		UpdatedAt: time.Now().UTC(),
	})
	return err
}

func (s *Orders) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	docs, err := collect[orderDoc](s.col.Where("customerId", "==", customerID).Documents(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.Order{OrderID: d.OrderID, CustomerID: d.CustomerID, Amount: d.Amount, Date: d.Date})
	}
	return out, nil
}

type outcomeDoc struct {
	CampaignID string    `firestore:"campaignId"`
	CustomerID string    `firestore:"customerId"`
	Status     string    `firestore:"status"`
	Subject    string    `firestore:"subject"`
	Timestamp  time.Time `firestore:"timestamp"`
}

// Outcomes keys documents by DeliveryOutcome.Key so a repeated pair overwrites.
type Outcomes struct {
	col *gcfs.CollectionRef
}

func (s *Outcomes) Upsert(ctx context.Context, o model.DeliveryOutcome) error {
	_, err := s.col.Doc(o.Key()).Set(ctx, outcomeDoc{
		CampaignID: o.CampaignID, CustomerID: o.CustomerID,
		Status: o.Status, Subject: o.Subject, Timestamp: o.Timestamp,
	})
	return err
}

func (s *Outcomes) ListAll(ctx context.Context) ([]model.DeliveryOutcome, error) {
	docs, err := collect[outcomeDoc](s.col.OrderBy(gcfs.DocumentID, gcfs.Asc).Documents(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]model.DeliveryOutcome, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DeliveryOutcome{
			CampaignID: d.CampaignID, CustomerID: d.CustomerID,
			Status: d.Status, Subject: d.Subject, Timestamp: d.Timestamp,
		})
	}
	return out, nil
}

type segmentDoc struct {
	ID         string            `firestore:"id"`
	Name       string            `firestore:"name"`
	Combinator string            `firestore:"combinator"`
	Conditions []model.Condition `firestore:"conditions"`
	CreatedAt  time.Time         `firestore:"createdAt"`
}

type Segments struct {
	col *gcfs.CollectionRef
}

func (s *Segments) Create(ctx context.Context, seg model.Segment) error {
	_, err := s.col.Doc(seg.ID).Create(ctx, segmentDoc{
		ID: seg.ID, Name: seg.Name, Combinator: string(seg.Combinator),
		Conditions: seg.Conditions, CreatedAt: seg.CreatedAt,
	})
	return err
}

func (s *Segments) GetByID(ctx context.Context, id string) (*model.Segment, error) {
	snap, err := s.col.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var d segmentDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal segment %s: %w", id, err)
	}
	seg := d.toModel()
	return &seg, nil
}

func (s *Segments) List(ctx context.Context) ([]model.Segment, error) {
	docs, err := collect[segmentDoc](s.col.OrderBy("createdAt", gcfs.Desc).Documents(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]model.Segment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (d segmentDoc) toModel() model.Segment {
	return model.Segment{
		ID: d.ID, Name: d.Name, Combinator: model.Combinator(d.Combinator),
		Conditions: d.Conditions, CreatedAt: d.CreatedAt,
	}
}
