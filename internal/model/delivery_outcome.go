// internal/model/delivery_outcome.go
package model

import (
	"strings"
	"time"
)

const (
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// DeliveryOutcome is keyed by (CampaignID, CustomerID); recording the pair again overwrites it.
type DeliveryOutcome struct {
	CampaignID string    `json:"campaignId"`
	CustomerID string    `json:"customerId"`
	Status     string    `json:"status"`
	Subject    string    `json:"subject"`
	Timestamp  time.Time `json:"timestamp"`
}

var keyEscaper = strings.NewReplacer("%", "%25", "_", "%5F", "/", "%2F")

// Key returns the document key used by stores that need a single string id.
// Each part is escaped before joining, so distinct pairs never share a key.
func (o DeliveryOutcome) Key() string {
	return keyEscaper.Replace(o.CampaignID) + "_" + keyEscaper.Replace(o.CustomerID)
}
