package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/service"
)

type SegmentController struct {
	SegmentService  *service.SegmentService
	AudienceService *service.AudienceService
}

type segmentBody struct {
	Name       string            `json:"name"`
	Combinator model.Combinator  `json:"combinator"`
	Conditions []model.Condition `json:"conditions"`
}

func (c *SegmentController) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var body segmentBody
	if !decodeBody(w, r, &body) {
		return
	}
	seg, err := c.SegmentService.Create(r.Context(), body.Name, body.Combinator, body.Conditions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, seg)
}

func (c *SegmentController) ListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := c.SegmentService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": segments})
}

func (c *SegmentController) GetSegment(w http.ResponseWriter, r *http.Request) {
	seg, err := c.SegmentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

func (c *SegmentController) SegmentAudience(w http.ResponseWriter, r *http.Request) {
	customers, err := c.SegmentService.Audience(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(customers),
		"customers": customers,
	})
}

// Preview evaluates an unsaved segment against the current customers.
func (c *SegmentController) Preview(w http.ResponseWriter, r *http.Request) {
	var body segmentBody
	if !decodeBody(w, r, &body) {
		return
	}
	customers, err := c.AudienceService.MatchAll(r.Context(), model.Segment{
		Name:       body.Name,
		Combinator: body.Combinator,
		Conditions: body.Conditions,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(customers),
		"customers": customers,
	})
}
