// Package segment decides audience membership by evaluating condition sets
// against customer records.
package segment

import (
	"strings"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/model"
)

// Condition fields, as authored in the segment builder.
const (
	FieldSpent        = "spent"
	FieldVisits       = "visits"
	FieldLastPurchase = "lastPurchase"
	FieldLocation     = "location"
	FieldDevice       = "device"
	FieldSource       = "source"
)

// Operators.
const (
	OpEq          = "eq"
	OpGt          = "gt"
	OpLt          = "lt"
	OpGte         = "gte"
	OpLte         = "lte"
	OpContains    = "contains"
	OpNotContains = "notContains"
)

var knownFields = map[string]bool{
	FieldSpent:        true,
	FieldVisits:       true,
	FieldLastPurchase: true,
	FieldLocation:     true,
	FieldDevice:       true,
	FieldSource:       true,
}

var numericOps = map[string]bool{
	OpGt:  true,
	OpLt:  true,
	OpGte: true,
	OpLte: true,
}

var stringOps = map[string]bool{
	OpEq:          true,
	OpContains:    true,
	OpNotContains: true,
}

// IsNumericOperator reports whether op compares numbers.
func IsNumericOperator(op string) bool {
	return numericOps[op]
}

// ValidateCondition rejects unknown fields and operators.
func ValidateCondition(cond model.Condition) error {
	if !knownFields[cond.Field] || !(numericOps[cond.Operator] || stringOps[cond.Operator]) {
		return appErrors.NewUnsupportedCondition(cond.Field, cond.Operator)
	}
	return nil
}

// Validate checks a whole segment definition before any record is evaluated.
func Validate(combinator model.Combinator, conds []model.Condition) error {
	if combinator != model.CombinatorAnd && combinator != model.CombinatorOr {
		return appErrors.ErrInvalidCombinator
	}
	if len(conds) == 0 {
		return appErrors.ErrEmptySegment
	}
	for _, cond := range conds {
		if err := ValidateCondition(cond); err != nil {
			return err
		}
	}
	return nil
}

// ParseCombinator accepts "and"/"or" in any case. An empty string means AND,
// the segment builder's default.
func ParseCombinator(s string) (model.Combinator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(model.CombinatorAnd):
		return model.CombinatorAnd, nil
	case string(model.CombinatorOr):
		return model.CombinatorOr, nil
	default:
		return "", appErrors.ErrInvalidCombinator
	}
}
