package controller

import (
	"net/http"

	"github.com/unclebandit/xeno-crm/internal/service"
)

type DeliveryController struct {
	Recorder *service.DeliveryRecorder
}

// RecordReceipt stores a delivery receipt reported by the send loop.
func (c *DeliveryController) RecordReceipt(w http.ResponseWriter, r *http.Request) {
	var body service.DeliveryInput
	if !decodeBody(w, r, &body) {
		return
	}
	outcome, err := c.Recorder.Record(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Delivery status logged",
		"outcome": outcome,
	})
}
