// internal/service/campaign_service.go
package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/repository"
)

type CampaignService struct {
	OutcomeRepo  repository.OutcomeRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	SegmentRepo  repository.SegmentRepositoryInterface
	Audience     *AudienceService
	Recorder     *DeliveryRecorder
	Sender       Sender
}

// SendCampaignRequest targets every customer unless a segment is given.
// Segment takes precedence over SegmentID.
type SendCampaignRequest struct {
	Name      string         `json:"name"`
	Message   string         `json:"message"`
	SegmentID string         `json:"segmentId,omitempty"`
	Segment   *model.Segment `json:"segment,omitempty"`
}

// Result struct for SendCampaign
type SendCampaignResult struct {
	CampaignID string `json:"campaignId"`
	Audience   int    `json:"audience"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Unrecorded int    `json:"unrecorded"`
	Status     string `json:"status"`
}

// Summarize groups outcomes by campaign in the order given. Name and date come
// from the first outcome seen for each campaign. The result is sorted by date,
// newest first.
func Summarize(outcomes []model.DeliveryOutcome) []model.CampaignSummary {
	index := map[string]int{}
	summaries := []model.CampaignSummary{}

	for _, o := range outcomes {
		i, ok := index[o.CampaignID]
		if !ok {
			name := o.Subject
			if strings.TrimSpace(name) == "" {
				name = defaultCampaignName
			}
			i = len(summaries)
			index[o.CampaignID] = i
			summaries = append(summaries, model.CampaignSummary{
				CampaignID: o.CampaignID,
				Name:       name,
				Date:       o.Timestamp,
			})
		}

		s := &summaries[i]
		s.Total++
		switch o.Status {
		case model.StatusSent:
			s.Sent++
		case model.StatusFailed:
			s.Failed++
		}
	}

	for i := range summaries {
		summaries[i].Status = summaries[i].DisplayStatus()
	}
	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].Date.After(summaries[b].Date)
	})
	return summaries
}

// ListSummaries reads every outcome and aggregates it. Read errors are returned as is.
func (s *CampaignService) ListSummaries(ctx context.Context) ([]model.CampaignSummary, error) {
	outcomes, err := s.OutcomeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(outcomes), nil
}

// ListCampaigns pages through summaries, optionally filtered by a
// case-insensitive name search.
func (s *CampaignService) ListCampaigns(ctx context.Context, page, pageSize int, search string) ([]model.CampaignSummary, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 5
	}
	if pageSize > 100 {
		pageSize = 100
	}

	all, err := s.ListSummaries(ctx)
	if err != nil {
		return nil, nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		filtered := []model.CampaignSummary{}
		for _, c := range all {
			if strings.Contains(strings.ToLower(c.Name), q) {
				filtered = append(filtered, c)
			}
		}
		all = filtered
	}

	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize

	// Pages past the end are empty; the offset is only computed for real pages.
	start, end := total, total
	if page <= totalPages {
		start = (page - 1) * pageSize
		end = min(start+pageSize, total)
	}

	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}
	return all[start:end], pagination, nil
}

// SendCampaign personalizes the message for each audience member, sends it and
// records the outcome. A failed send is recorded as FAILED; a failed record is
// logged and counted in Unrecorded.
func (s *CampaignService) SendCampaign(ctx context.Context, req SendCampaignRequest) (*SendCampaignResult, error) {
	name := strings.TrimSpace(req.Name)
	message := strings.TrimSpace(req.Message)
	if name == "" {
		return nil, appErrors.NewMissingField("name")
	}
	if message == "" {
		return nil, appErrors.NewMissingField("message")
	}

	audience, err := s.resolveAudience(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &SendCampaignResult{
		CampaignID: "camp_" + uuid.NewString(),
		Audience:   len(audience),
	}
	log.Printf("🚀 Sending campaign %s (%q) to %d customers", result.CampaignID, name, len(audience))

	for _, customer := range audience {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		status := model.StatusSent
		sendErr := s.Sender.Send(ctx, Message{
			To:      customer.Email,
			Subject: name,
			Text:    PersonalizeMessage(customer.Name, message),
		})
		if sendErr != nil {
			log.Println("⚠️ failed to send to customer", customer.ID, ":", sendErr)
			status = model.StatusFailed
		}

		if _, err := s.Recorder.Record(ctx, DeliveryInput{
			CampaignID: result.CampaignID,
			CustomerID: customer.ID,
			Status:     status,
			Subject:    name,
		}); err != nil {
			log.Println("⚠️ failed to record outcome for customer", customer.ID, ":", err)
			result.Unrecorded++
			continue
		}

		if status == model.StatusSent {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	result.Status = model.CampaignSummary{
		Sent: result.Sent, Failed: result.Failed, Total: result.Sent + result.Failed,
	}.DisplayStatus()
	log.Printf("✅ Campaign %s done: sent=%d failed=%d", result.CampaignID, result.Sent, result.Failed)
	return result, nil
}

func (s *CampaignService) resolveAudience(ctx context.Context, req SendCampaignRequest) ([]model.Customer, error) {
	switch {
	case req.Segment != nil:
		return s.Audience.MatchAll(ctx, *req.Segment)
	case strings.TrimSpace(req.SegmentID) != "":
		seg, err := s.SegmentRepo.GetByID(ctx, req.SegmentID)
		if err != nil {
			return nil, err
		}
		if seg == nil {
			return nil, appErrors.NewNotFound("segment", req.SegmentID)
		}
		return s.Audience.MatchAll(ctx, *seg)
	default:
		return s.CustomerRepo.ListAll(ctx)
	}
}
