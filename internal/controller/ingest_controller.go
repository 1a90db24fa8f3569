package controller

import (
	"net/http"

	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/queue"
	"github.com/unclebandit/xeno-crm/internal/service"
)

// IngestController accepts customer and order writes for asynchronous application.
type IngestController struct {
	Ingest      *service.IngestService
	Worker      *service.Worker
	DeadLetters *queue.MemoryDeadLetters
}

func (c *IngestController) AcceptCustomer(w http.ResponseWriter, r *http.Request) {
	var body model.Customer
	if !decodeBody(w, r, &body) {
		return
	}
	jobID, err := c.Ingest.AcceptCustomer(body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Customer accepted for processing",
		"jobId":   jobID,
	})
}

func (c *IngestController) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	var body service.OrderInput
	if !decodeBody(w, r, &body) {
		return
	}
	jobID, err := c.Ingest.AcceptOrder(body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Order accepted for processing",
		"jobId":   jobID,
	})
}

func (c *IngestController) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Worker.Stats())
}

// ListDeadLetters lists the most recent jobs the worker gave up on.
func (c *IngestController) ListDeadLetters(w http.ResponseWriter, r *http.Request) {
	letters := []queue.DeadLetter{}
	if c.DeadLetters != nil {
		letters = c.DeadLetters.List()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  letters,
		"count": len(letters),
	})
}
