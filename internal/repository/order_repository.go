package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/unclebandit/xeno-crm/internal/db"
	"github.com/unclebandit/xeno-crm/internal/model"
)

type orderRow struct {
	OrderID    string        `db:"order_id"`
	CustomerID string        `db:"customer_id"`
	Amount     float64       `db:"amount"`
	OrderDate  sql.NullInt64 `db:"order_date"`
}

type OrderRepository struct {
	Q *db.Queries
}

func (r *OrderRepository) Upsert(ctx context.Context, o model.Order) error {
	_, err := r.Q.Exec(ctx, "upsert-order",
		o.OrderID, o.CustomerID, o.Amount, nullMillis(o.Date), toMillis(time.Now()),
	)
	return err
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	var rows []orderRow
	if err := r.Q.Select(ctx, "list-orders-by-customer", &rows, customerID); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, model.Order{
			OrderID:    row.OrderID,
			CustomerID: row.CustomerID,
			Amount:     row.Amount,
			Date:       timeFromNull(row.OrderDate),
		})
	}
	return orders, nil
}
