// internal/segment/evaluate.go
package segment

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/unclebandit/xeno-crm/internal/model"
)

/*
 * Single-condition evaluation.
 *
 * Flow: validate -> resolve field on the customer -> compare.
 *
 * Numeric operators (gt/lt/gte/lte) parse both sides as float64. A missing
 * field or an unparseable value on either side is a non-match, not an error.
 *
 * String operators (eq/contains/notContains) compare the field's string form,
 * case-sensitively. A missing field is a non-match for all three, including
 * notContains.
 *
 * lastPurchase resolves to whole days elapsed since the customer's lastActive.
 */

// Evaluate reports whether the customer satisfies cond, measuring day-based
// fields against now. Unknown fields or operators return UnsupportedCondition.
func Evaluate(c model.Customer, cond model.Condition, now time.Time) (bool, error) {
	if err := ValidateCondition(cond); err != nil {
		return false, err
	}

	value, found := resolveField(c, cond.Field, now)
	if !found {
		return false, nil
	}

	if numericOps[cond.Operator] {
		return compareNumeric(cond.Operator, value, cond.Value), nil
	}
	return compareText(cond.Operator, value, cond.Value), nil
}

// resolveField returns the customer's value for field and whether it is present.
func resolveField(c model.Customer, field string, now time.Time) (any, bool) {
	switch field {
	case FieldSpent:
		if c.TotalSpend == nil {
			return nil, false
		}
		return *c.TotalSpend, true
	case FieldVisits:
		if c.VisitCount == nil {
			return nil, false
		}
		return *c.VisitCount, true
	case FieldLastPurchase:
		if c.LastActive == nil || c.LastActive.IsZero() {
			return nil, false
		}
		return int64(now.Sub(*c.LastActive) / (24 * time.Hour)), true
	case FieldLocation:
		return c.Location, c.Location != ""
	case FieldDevice:
		return c.Device, c.Device != ""
	case FieldSource:
		return c.Source, c.Source != ""
	default:
		return nil, false
	}
}

func compareNumeric(op string, value any, target string) bool {
	a, ok := toFloat64(value)
	if !ok {
		return false
	}
	b, ok := toFloat64(target)
	if !ok {
		return false
	}
	switch op {
	case OpGt:
		return a > b
	case OpLt:
		return a < b
	case OpGte:
		return a >= b
	case OpLte:
		return a <= b
	default:
		return false
	}
}

func compareText(op string, value any, target string) bool {
	s := toText(value)
	switch op {
	case OpEq:
		return s == target
	case OpContains:
		return strings.Contains(s, target)
	case OpNotContains:
		return !strings.Contains(s, target)
	default:
		return false
	}
}

// toFloat64 accepts numbers and finite numeric strings. Whitespace-only strings are not numbers.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		n = strings.TrimSpace(n)
		if n == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}
