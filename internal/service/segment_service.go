package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/repository"
)

// SegmentService stores reusable segment definitions.
type SegmentService struct {
	SegmentRepo repository.SegmentRepositoryInterface
	Matcher     *AudienceService
}

func (s *SegmentService) Create(ctx context.Context, name string, combinator model.Combinator, conds []model.Condition) (*model.Segment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.NewMissingField("name")
	}
	seg, err := NormalizeSegment(model.Segment{Name: name, Combinator: combinator, Conditions: conds})
	if err != nil {
		return nil, err
	}
	seg.ID = uuid.NewString()
	seg.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := s.SegmentRepo.Create(ctx, seg); err != nil {
		return nil, appErrors.NewStoreWriteFailure("create segment", err)
	}
	return &seg, nil
}

func (s *SegmentService) Get(ctx context.Context, id string) (*model.Segment, error) {
	seg, err := s.SegmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, appErrors.NewNotFound("segment", id)
	}
	return seg, nil
}

func (s *SegmentService) List(ctx context.Context) ([]model.Segment, error) {
	return s.SegmentRepo.List(ctx)
}

// Audience resolves a stored segment to its matching customers.
func (s *SegmentService) Audience(ctx context.Context, id string) ([]model.Customer, error) {
	seg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Matcher.MatchAll(ctx, *seg)
}
