// internal/model/campaign.go
package model

import "time"

const (
	SummaryNoLogs         = "No logs"
	SummaryAllSent        = "All Sent"
	SummaryAllFailed      = "All Failed"
	SummaryPartialSuccess = "Partial Success"
)

// CampaignSummary is derived from delivery outcomes on every read and never stored.
type CampaignSummary struct {
	CampaignID string    `json:"campaignId"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Total      int       `json:"total"`
	Status     string    `json:"status"`
}

// DisplayStatus classifies the summary counters for the campaign history view.
func (s CampaignSummary) DisplayStatus() string {
	switch {
	case s.Total == 0:
		return SummaryNoLogs
	case s.Failed == 0:
		return SummaryAllSent
	case s.Sent == 0:
		return SummaryAllFailed
	default:
		return SummaryPartialSuccess
	}
}
