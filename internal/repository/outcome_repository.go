package repository

import (
	"context"

	"github.com/unclebandit/xeno-crm/internal/db"
	"github.com/unclebandit/xeno-crm/internal/model"
)

type outcomeRow struct {
	CampaignID string `db:"campaign_id"`
	CustomerID string `db:"customer_id"`
	Status     string `db:"status"`
	Subject    string `db:"subject"`
	RecordedAt int64  `db:"recorded_at"`
}

// OutcomeRepository persists the communication log.
type OutcomeRepository struct {
	Q *db.Queries
}

// Upsert is idempotent on (campaign_id, customer_id); a second write replaces the first.
func (r *OutcomeRepository) Upsert(ctx context.Context, o model.DeliveryOutcome) error {
	_, err := r.Q.Exec(ctx, "upsert-outcome",
		o.CampaignID, o.CustomerID, o.Status, o.Subject, toMillis(o.Timestamp),
	)
	return err
}

// ListAll returns outcomes ordered by campaign then customer.
func (r *OutcomeRepository) ListAll(ctx context.Context) ([]model.DeliveryOutcome, error) {
	var rows []outcomeRow
	if err := r.Q.Select(ctx, "list-outcomes", &rows); err != nil {
		return nil, err
	}
	outcomes := make([]model.DeliveryOutcome, 0, len(rows))
	for _, row := range rows {
		outcomes = append(outcomes, model.DeliveryOutcome{
			CampaignID: row.CampaignID,
			CustomerID: row.CustomerID,
			Status:     row.Status,
			Subject:    row.Subject,
			Timestamp:  fromMillis(row.RecordedAt),
		})
	}
	return outcomes, nil
}
