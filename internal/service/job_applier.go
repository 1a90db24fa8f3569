package service

import (
	"context"
	"fmt"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/repository"
)

// Applier writes one ingestion job to storage.
type Applier interface {
	Apply(ctx context.Context, job model.IngestionJob) error
}

// JobApplier upserts customer and order jobs into their repositories.
type JobApplier struct {
	CustomerRepo repository.CustomerRepositoryInterface
	OrderRepo    repository.OrderRepositoryInterface
}

func (a *JobApplier) Apply(ctx context.Context, job model.IngestionJob) error {
	switch j := job.(type) {
	case *model.CustomerJob:
		if err := a.CustomerRepo.Upsert(ctx, j.Customer); err != nil {
			return appErrors.NewStoreWriteFailure("upsert customer "+j.Customer.ID, err)
		}
	case *model.OrderJob:
		if err := a.OrderRepo.Upsert(ctx, j.Order); err != nil {
			return appErrors.NewStoreWriteFailure("upsert order "+j.Order.OrderID, err)
		}
	default:
		return fmt.Errorf("unknown ingestion job %T", job)
	}
	return nil
}

var _ Applier = (*JobApplier)(nil)
