package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/unclebandit/xeno-crm/internal/db"
	"github.com/unclebandit/xeno-crm/internal/model"
)

type segmentRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Combinator string `db:"combinator"`
	Conditions string `db:"conditions"`
	CreatedAt  int64  `db:"created_at"`
}

func (r segmentRow) toModel() (model.Segment, error) {
	var conds []model.Condition
	if err := json.Unmarshal([]byte(r.Conditions), &conds); err != nil {
		return model.Segment{}, fmt.Errorf("decode conditions for segment %s: %w", r.ID, err)
	}
	return model.Segment{
		ID:         r.ID,
		Name:       r.Name,
		Combinator: model.Combinator(r.Combinator),
		Conditions: conds,
		CreatedAt:  fromMillis(r.CreatedAt),
	}, nil
}

type SegmentRepository struct {
	Q *db.Queries
}

func (r *SegmentRepository) Create(ctx context.Context, s model.Segment) error {
	conds, err := json.Marshal(s.Conditions)
	if err != nil {
		return err
	}
	_, err = r.Q.Exec(ctx, "insert-segment",
		s.ID, s.Name, string(s.Combinator), string(conds), toMillis(s.CreatedAt),
	)
	return err
}

// GetByID returns nil, nil when the segment does not exist
func (r *SegmentRepository) GetByID(ctx context.Context, id string) (*model.Segment, error) {
	var row segmentRow
	if err := r.Q.Get(ctx, "get-segment", &row, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns segments newest first.
func (r *SegmentRepository) List(ctx context.Context) ([]model.Segment, error) {
	var rows []segmentRow
	if err := r.Q.Select(ctx, "list-segments", &rows); err != nil {
		return nil, err
	}
	segments := make([]model.Segment, 0, len(rows))
	for _, row := range rows {
		s, err := row.toModel()
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, nil
}
