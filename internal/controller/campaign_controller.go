// internal/controller/campaign_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/unclebandit/xeno-crm/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	search := r.URL.Query().Get("search")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), page, pageSize, search)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination, // already contains total_count, total_pages, page, page_size
	})
}

// ListSummaries returns every campaign summary, newest first, without paging.
func (c *CampaignController) ListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := c.CampaignService.ListSummaries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": summaries,
	})
}

func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.SendCampaignRequest
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := c.CampaignService.SendCampaign(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
