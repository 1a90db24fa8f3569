// internal/segment/engine.go
package segment

import (
	"time"

	"github.com/unclebandit/xeno-crm/internal/model"
)

// EvaluatorFunc evaluates one condition against one customer.
type EvaluatorFunc func(c model.Customer, cond model.Condition) (bool, error)

// Engine combines conditions with AND/OR into a membership predicate.
type Engine struct {
	// Evaluator overrides the default condition evaluator. Nil uses Evaluate.
	Evaluator EvaluatorFunc
	// Now supplies the reference time for day-based fields. Nil uses time.Now.
	Now func() time.Time
}

// NewEngine creates an engine with the default evaluator and wall clock.
func NewEngine() *Engine {
	return &Engine{}
}

// Match validates the segment, then evaluates conditions in order. AND stops at
// the first false and OR at the first true.
func (e *Engine) Match(c model.Customer, seg model.Segment) (bool, error) {
	if err := Validate(seg.Combinator, seg.Conditions); err != nil {
		return false, err
	}
	return e.match(c, seg, e.evaluator())
}

// Filter returns the customers matching seg, in input order. The segment is
// validated once before any customer is evaluated.
func (e *Engine) Filter(customers []model.Customer, seg model.Segment) ([]model.Customer, error) {
	if err := Validate(seg.Combinator, seg.Conditions); err != nil {
		return nil, err
	}
	eval := e.evaluator()
	matched := []model.Customer{}
	for _, c := range customers {
		ok, err := e.match(c, seg, eval)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (e *Engine) match(c model.Customer, seg model.Segment, eval EvaluatorFunc) (bool, error) {
	for _, cond := range seg.Conditions {
		ok, err := eval(c, cond)
		if err != nil {
			return false, err
		}
		if seg.Combinator == model.CombinatorAnd && !ok {
			return false, nil
		}
		if seg.Combinator == model.CombinatorOr && ok {
			return true, nil
		}
	}
	// AND got through every condition; OR found none.
	return seg.Combinator == model.CombinatorAnd, nil
}

func (e *Engine) evaluator() EvaluatorFunc {
	if e.Evaluator != nil {
		return e.Evaluator
	}
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	return func(c model.Customer, cond model.Condition) (bool, error) {
		return Evaluate(c, cond, now)
	}
}
