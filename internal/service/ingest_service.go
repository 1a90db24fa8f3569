package service

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/queue"
)

// IngestService validates writes and hands them to the ingestion queue.
// Accepted jobs are applied later by the Worker.
type IngestService struct {
	Queue queue.Queue
}

// OrderInput keeps Amount optional so a missing amount can be told apart from zero.
type OrderInput struct {
	OrderID    string     `json:"orderId"`
	CustomerID string     `json:"customerId"`
	Amount     *float64   `json:"amount"`
	Date       *time.Time `json:"date,omitempty"`
}

// UnmarshalJSON accepts ids as strings or numbers and amount as a number or
// numeric string.
func (in *OrderInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		OrderID    json.RawMessage `json:"orderId"`
		CustomerID json.RawMessage `json:"customerId"`
		Amount     json.RawMessage `json:"amount"`
		Date       *time.Time      `json:"date,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	orderID, err := model.DecodeText(raw.OrderID, "orderId")
	if err != nil {
		return err
	}
	customerID, err := model.DecodeText(raw.CustomerID, "customerId")
	if err != nil {
		return err
	}
	amount, err := model.DecodeFloat(raw.Amount, "amount")
	if err != nil {
		return err
	}
	*in = OrderInput{OrderID: orderID, CustomerID: customerID, Amount: amount, Date: raw.Date}
	return nil
}

// AcceptCustomer enqueues a customer upsert and returns the job ID.
func (s *IngestService) AcceptCustomer(c model.Customer) (string, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	switch {
	case c.ID == "":
		return "", appErrors.NewMissingField("id")
	case c.Name == "":
		return "", appErrors.NewMissingField("name")
	case c.Email == "":
		return "", appErrors.NewMissingField("email")
	}

	job := model.NewCustomerJob(c)
	s.Queue.Enqueue(job)
	log.Printf("📥 Queued customer job %s for customer %s", job.ID, c.ID)
	return job.ID, nil
}

// AcceptOrder enqueues an order upsert and returns the job ID.
func (s *IngestService) AcceptOrder(in OrderInput) (string, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	switch {
	case in.OrderID == "":
		return "", appErrors.NewMissingField("orderId")
	case in.CustomerID == "":
		return "", appErrors.NewMissingField("customerId")
	case in.Amount == nil:
		return "", appErrors.NewMissingField("amount")
	}

	job := model.NewOrderJob(model.Order{
		OrderID:    in.OrderID,
		CustomerID: in.CustomerID,
		Amount:     *in.Amount,
		Date:       in.Date,
	})
	s.Queue.Enqueue(job)
	log.Printf("📥 Queued order job %s for order %s", job.ID, in.OrderID)
	return job.ID, nil
}
