package service

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/repository"
)

const defaultCampaignName = "Unnamed"

// DeliveryInput is one reported send result.
type DeliveryInput struct {
	CampaignID string `json:"campaignId"`
	CustomerID string `json:"customerId"`
	Status     string `json:"status"`
	Subject    string `json:"subject"`
}

// DeliveryRecorder writes one outcome per (campaign, customer) pair.
type DeliveryRecorder struct {
	OutcomeRepo repository.OutcomeRepositoryInterface
	Now         func() time.Time
}

// Record validates the input and upserts the outcome. Status is
// case-insensitive on input and stored upper-case.
func (r *DeliveryRecorder) Record(ctx context.Context, in DeliveryInput) (*model.DeliveryOutcome, error) {
	campaignID := strings.TrimSpace(in.CampaignID)
	customerID := strings.TrimSpace(in.CustomerID)
	status := strings.ToUpper(strings.TrimSpace(in.Status))

	switch {
	case campaignID == "":
		return nil, appErrors.NewMissingField("campaignId")
	case customerID == "":
		return nil, appErrors.NewMissingField("customerId")
	case status == "":
		return nil, appErrors.NewMissingField("status")
	}
	if status != model.StatusSent && status != model.StatusFailed {
		return nil, appErrors.NewInvalidStatus(in.Status)
	}

	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = defaultCampaignName
	}

	outcome := model.DeliveryOutcome{
		CampaignID: campaignID,
		CustomerID: customerID,
		Status:     status,
		Subject:    subject,
		Timestamp:  r.now(),
	}
	if err := r.OutcomeRepo.Upsert(ctx, outcome); err != nil {
		return nil, appErrors.NewStoreWriteFailure("record outcome "+outcome.Key(), err)
	}
	return &outcome, nil
}

func (r *DeliveryRecorder) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}
