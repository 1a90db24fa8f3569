// Package memory holds process-local repositories used when no database URL
// is configured and by tests. Records are copied in and out so callers never
// share mutable state with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/unclebandit/xeno-crm/internal/model"
)

// ordered is a map that remembers first-insertion order. Replacing a value
// keeps its original position.
type ordered[K comparable, T any] struct {
	mu    sync.RWMutex
	index map[K]int
	items []T
}

func newOrdered[K comparable, T any]() *ordered[K, T] {
	return &ordered[K, T]{index: map[K]int{}}
}

func (o *ordered[K, T]) put(key K, v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i, ok := o.index[key]; ok {
		o.items[i] = v
		return
	}
	o.index[key] = len(o.items)
	o.items = append(o.items, v)
}

func (o *ordered[K, T]) get(key K) (T, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	i, ok := o.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return o.items[i], true
}

func (o *ordered[K, T]) all() []T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]T, len(o.items))
	copy(out, o.items)
	return out
}

// Customers is an in-memory CustomerRepositoryInterface.
type Customers struct {
	data *ordered[string, model.Customer]
}

func NewCustomers() *Customers {
	return &Customers{data: newOrdered[string, model.Customer]()}
}

func (s *Customers) Upsert(ctx context.Context, c model.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data.put(c.ID, cloneCustomer(c))
	return nil
}

func (s *Customers) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := s.data.get(id)
	if !ok {
		return nil, nil
	}
	c = cloneCustomer(c)
	return &c, nil
}

func (s *Customers) ListAll(ctx context.Context) ([]model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := s.data.all()
	for i := range all {
		all[i] = cloneCustomer(all[i])
	}
	return all, nil
}

func cloneCustomer(c model.Customer) model.Customer {
	if c.TotalSpend != nil {
		v := *c.TotalSpend
		c.TotalSpend = &v
	}
	if c.VisitCount != nil {
		v := *c.VisitCount
		c.VisitCount = &v
	}
	if c.LastActive != nil {
		v := *c.LastActive
		c.LastActive = &v
	}
	return c
}

// Orders is an in-memory OrderRepositoryInterface.
type Orders struct {
	data *ordered[string, model.Order]
}

func NewOrders() *Orders {
	return &Orders{data: newOrdered[string, model.Order]()}
}

func (s *Orders) Upsert(ctx context.Context, o model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.Date != nil {
		d := *o.Date
		o.Date = &d
	}
	s.data.put(o.OrderID, o)
	return nil
}

func (s *Orders) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []model.Order{}
	for _, o := range s.data.all() {
		if o.CustomerID != customerID {
			continue
		}
		if o.Date != nil {
			d := *o.Date
			o.Date = &d
		}
		out = append(out, o)
	}
	return out, nil
}

// outcomeKey identifies one outcome by its (campaign, customer) pair.
type outcomeKey struct {
	campaignID string
	customerID string
}

// Outcomes is an in-memory OutcomeRepositoryInterface. ListAll returns
// outcomes in the order their pairs were first recorded.
type Outcomes struct {
	data *ordered[outcomeKey, model.DeliveryOutcome]
}

func NewOutcomes() *Outcomes {
	return &Outcomes{data: newOrdered[outcomeKey, model.DeliveryOutcome]()}
}

func (s *Outcomes) Upsert(ctx context.Context, o model.DeliveryOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data.put(outcomeKey{campaignID: o.CampaignID, customerID: o.CustomerID}, o)
	return nil
}

func (s *Outcomes) ListAll(ctx context.Context) ([]model.DeliveryOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data.all(), nil
}

// Segments is an in-memory SegmentRepositoryInterface.
type Segments struct {
	data *ordered[string, model.Segment]
}

func NewSegments() *Segments {
	return &Segments{data: newOrdered[string, model.Segment]()}
}

func (s *Segments) Create(ctx context.Context, seg model.Segment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seg.Conditions = append([]model.Condition(nil), seg.Conditions...)
	s.data.put(seg.ID, seg)
	return nil
}

func (s *Segments) GetByID(ctx context.Context, id string) (*model.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seg, ok := s.data.get(id)
	if !ok {
		return nil, nil
	}
	seg.Conditions = append([]model.Condition(nil), seg.Conditions...)
	return &seg, nil
}

// List returns segments newest first.
func (s *Segments) List(ctx context.Context) ([]model.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := s.data.all()
	for i := range all {
		all[i].Conditions = append([]model.Condition(nil), all[i].Conditions...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
