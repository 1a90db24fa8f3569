// internal/model/order.go
package model

import "time"

// Order is the ingested order record. CustomerID is not checked against customers.
type Order struct {
	OrderID    string     `json:"orderId"`
	CustomerID string     `json:"customerId"`
	Amount     float64    `json:"amount"`
	Date       *time.Time `json:"date,omitempty"`
}
