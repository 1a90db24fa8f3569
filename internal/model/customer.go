// internal/model/customer.go
package model

import (
	"encoding/json"
	"time"
)

// Customer is the ingested customer record. Re-ingesting the same ID replaces it.
type Customer struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	TotalSpend *float64   `json:"totalSpend,omitempty"`
	VisitCount *int64     `json:"visitCount,omitempty"`
	LastActive *time.Time `json:"lastActive,omitempty"`
	Location   string     `json:"location,omitempty"`
	Device     string     `json:"device,omitempty"`
	Source     string     `json:"source,omitempty"`
}

// UnmarshalJSON accepts id as a string or number and the numeric attributes as
// numbers or numeric strings.
func (c *Customer) UnmarshalJSON(b []byte) error {
	type plain Customer
	var raw struct {
		plain
		ID         json.RawMessage `json:"id"`
		TotalSpend json.RawMessage `json:"totalSpend"`
		VisitCount json.RawMessage `json:"visitCount"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	id, err := DecodeText(raw.ID, "id")
	if err != nil {
		return err
	}
	spend, err := DecodeFloat(raw.TotalSpend, "totalSpend")
	if err != nil {
		return err
	}
	visits, err := DecodeInt(raw.VisitCount, "visitCount")
	if err != nil {
		return err
	}

	*c = Customer(raw.plain)
	c.ID = id
	c.TotalSpend = spend
	c.VisitCount = visits
	return nil
}
