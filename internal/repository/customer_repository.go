package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/unclebandit/xeno-crm/internal/db"
	"github.com/unclebandit/xeno-crm/internal/model"
)

type customerRow struct {
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	Email      string          `db:"email"`
	TotalSpend sql.NullFloat64 `db:"total_spend"`
	VisitCount sql.NullInt64   `db:"visit_count"`
	LastActive sql.NullInt64   `db:"last_active"`
	Location   string          `db:"location"`
	Device     string          `db:"device"`
	Source     string          `db:"source"`
}

func (r customerRow) toModel() model.Customer {
	c := model.Customer{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		LastActive: timeFromNull(r.LastActive),
		Location:   r.Location,
		Device:     r.Device,
		Source:     r.Source,
	}
	if r.TotalSpend.Valid {
		v := r.TotalSpend.Float64
		c.TotalSpend = &v
	}
	if r.VisitCount.Valid {
		v := r.VisitCount.Int64
		c.VisitCount = &v
	}
	return c
}

// CustomerRepository is the SQL implementation
type CustomerRepository struct {
	Q *db.Queries
}

func (r *CustomerRepository) Upsert(ctx context.Context, c model.Customer) error {
	var spend sql.NullFloat64
	if c.TotalSpend != nil {
		spend = sql.NullFloat64{Float64: *c.TotalSpend, Valid: true}
	}
	var visits sql.NullInt64
	if c.VisitCount != nil {
		visits = sql.NullInt64{Int64: *c.VisitCount, Valid: true}
	}
	_, err := r.Q.Exec(ctx, "upsert-customer",
		c.ID, c.Name, c.Email, spend, visits, nullMillis(c.LastActive),
		c.Location, c.Device, c.Source, toMillis(time.Now()),
	)
	return err
}

// GetByID returns nil, nil when the customer does not exist
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var row customerRow
	if err := r.Q.Get(ctx, "get-customer", &row, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c := row.toModel()
	return &c, nil
}

// ListAll fetches all customers ordered by ID
func (r *CustomerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	var rows []customerRow
	if err := r.Q.Select(ctx, "list-customers", &rows); err != nil {
		return nil, err
	}
	customers := make([]model.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.toModel())
	}
	return customers, nil
}
