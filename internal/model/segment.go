package model

import (
	"encoding/json"
	"time"
)

type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

// Condition is one field/operator/value test. Value is always a string and is
// parsed as a number when the operator is numeric.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// UnmarshalJSON accepts value as a JSON string or number, so {"value": 100}
// and {"value": "100"} decode the same.
func (c *Condition) UnmarshalJSON(b []byte) error {
	var raw struct {
		Field    string          `json:"field"`
		Operator string          `json:"operator"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	value, err := DecodeText(raw.Value, "value")
	if err != nil {
		return err
	}
	c.Field = raw.Field
	c.Operator = raw.Operator
	c.Value = value
	return nil
}

// Segment is a stored segment definition.
type Segment struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Combinator Combinator  `json:"combinator"`
	Conditions []Condition `json:"conditions"`
	CreatedAt  time.Time   `json:"createdAt"`
}
