package service

import (
	"context"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/repository"
	"github.com/unclebandit/xeno-crm/internal/segment"
)

// AudienceService resolves segments against stored customers.
type AudienceService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	Engine       *segment.Engine
}

// NormalizeSegment canonicalizes the combinator and validates the definition.
func NormalizeSegment(seg model.Segment) (model.Segment, error) {
	comb, err := segment.ParseCombinator(string(seg.Combinator))
	if err != nil {
		return seg, err
	}
	seg.Combinator = comb
	if err := segment.Validate(seg.Combinator, seg.Conditions); err != nil {
		return seg, err
	}
	return seg, nil
}

// MatchAll returns every stored customer in seg, in store iteration order.
// A malformed segment fails before the store is read.
func (s *AudienceService) MatchAll(ctx context.Context, seg model.Segment) ([]model.Customer, error) {
	seg, err := NormalizeSegment(seg)
	if err != nil {
		return nil, err
	}
	customers, err := s.CustomerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine().Filter(customers, seg)
}

// Evaluate reports whether one stored customer belongs to seg.
func (s *AudienceService) Evaluate(ctx context.Context, customerID string, seg model.Segment) (bool, error) {
	seg, err := NormalizeSegment(seg)
	if err != nil {
		return false, err
	}
	c, err := s.CustomerRepo.GetByID(ctx, customerID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, appErrors.NewNotFound("customer", customerID)
	}
	return s.engine().Match(*c, seg)
}

func (s *AudienceService) engine() *segment.Engine {
	if s.Engine == nil {
		return segment.NewEngine()
	}
	return s.Engine
}
