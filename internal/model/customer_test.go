package model

import (
	"encoding/json"
	"errors"
	"testing"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
)

func TestCustomer_UnmarshalFlexibleTypes(t *testing.T) {
	var c Customer
	in := `{"id": 1, "name": "Alice", "email": "a@x.io", "totalSpend": "120.5", "visitCount": 7, "location": "Nairobi"}`
	if err := json.Unmarshal([]byte(in), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if c.ID != "1" || c.Name != "Alice" || c.Location != "Nairobi" {
		t.Errorf("unexpected customer: %+v", c)
	}
	if c.TotalSpend == nil || *c.TotalSpend != 120.5 {
		t.Errorf("expected totalSpend 120.5, got %v", c.TotalSpend)
	}
	if c.VisitCount == nil || *c.VisitCount != 7 {
		t.Errorf("expected visitCount 7, got %v", c.VisitCount)
	}
}

func TestCustomer_UnmarshalOmittedNumbers(t *testing.T) {
	var c Customer
	if err := json.Unmarshal([]byte(`{"id": "c1", "totalSpend": null}`), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if c.ID != "c1" || c.TotalSpend != nil || c.VisitCount != nil {
		t.Errorf("expected absent numbers to stay nil, got %+v", c)
	}
}

func TestCustomer_UnmarshalInvalidField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"non numeric spend", `{"id": "c1", "totalSpend": "lots"}`, "totalSpend"},
		{"fractional visits", `{"id": "c1", "visitCount": 2.5}`, "visitCount"},
		{"object id", `{"id": {"n": 1}}`, "id"},
		{"bool spend", `{"id": "c1", "totalSpend": true}`, "totalSpend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Customer
			err := json.Unmarshal([]byte(tt.input), &c)
			var invalid *appErrors.InvalidFieldError
			if !errors.As(err, &invalid) || invalid.Field != tt.field {
				t.Fatalf("expected InvalidField(%s), got %v", tt.field, err)
			}
		})
	}
}

func TestCustomer_JobEnvelopeKeepsNumbers(t *testing.T) {
	spend := 42.0
	visits := int64(3)
	job := NewCustomerJob(Customer{ID: "c1", Name: "A", Email: "a@x.io", TotalSpend: &spend, VisitCount: &visits})
	b, err := MarshalJob(job)
	if err != nil {
		t.Fatalf("MarshalJob() error = %v", err)
	}
	back, err := UnmarshalJob(b)
	if err != nil {
		t.Fatalf("UnmarshalJob() error = %v", err)
	}
	got := back.(*CustomerJob).Customer
	if *got.TotalSpend != 42 || *got.VisitCount != 3 {
		t.Errorf("unexpected customer after envelope: %+v", got)
	}
}
