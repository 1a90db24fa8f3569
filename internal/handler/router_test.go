package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unclebandit/xeno-crm/internal/controller"
	"github.com/unclebandit/xeno-crm/internal/handler"
	"github.com/unclebandit/xeno-crm/internal/queue"
	"github.com/unclebandit/xeno-crm/internal/repository"
	"github.com/unclebandit/xeno-crm/internal/service"
)

type app struct {
	server *httptest.Server
	worker *service.Worker
}

func newApp(t *testing.T) *app {
	t.Helper()
	store := repository.NewMemoryStore()
	q := queue.NewInMemoryQueue()
	dead := queue.NewMemoryDeadLetters(100)
	worker := service.NewWorker(q, &service.JobApplier{CustomerRepo: store.Customers, OrderRepo: store.Orders}, dead, service.WorkerConfig{BatchSize: 100})
	audience := &service.AudienceService{CustomerRepo: store.Customers}
	recorder := &service.DeliveryRecorder{OutcomeRepo: store.Outcomes}

	router := handler.NewRouter(handler.Controllers{
		Ingest:   &controller.IngestController{Ingest: &service.IngestService{Queue: q}, Worker: worker, DeadLetters: dead},
		Customer: &controller.CustomerController{CustomerRepo: store.Customers, OrderRepo: store.Orders},
		Delivery: &controller.DeliveryController{Recorder: recorder},
		Campaign: &controller.CampaignController{CampaignService: &service.CampaignService{
			OutcomeRepo:  store.Outcomes,
			CustomerRepo: store.Customers,
			SegmentRepo:  store.Segments,
			Audience:     audience,
			Recorder:     recorder,
			Sender:       &service.MockSender{SuccessRate: 1},
		}},
		Segment: &controller.SegmentController{
			SegmentService:  &service.SegmentService{SegmentRepo: store.Segments, Matcher: audience},
			AudienceService: audience,
		},
	}, []string{"http://localhost:3000"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &app{server: srv, worker: worker}
}

func (a *app) post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(a.server.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *app) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_EndToEnd(t *testing.T) {
	a := newApp(t)

	for _, c := range []map[string]interface{}{
		{"id": "c1", "name": "Alice", "email": "alice@example.com", "totalSpend": 500},
		{"id": "c2", "name": "Bob", "email": "bob@example.com", "totalSpend": 20},
	} {
		if resp := a.post(t, "/api/customers", c); resp.StatusCode != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", resp.StatusCode)
		}
	}
	a.worker.Drain(context.Background())

	resp := a.post(t, "/api/campaigns/send", map[string]interface{}{
		"name":    "VIP",
		"message": "thanks for shopping",
		"segment": map[string]interface{}{
			"combinator": "OR",
			"conditions": []map[string]string{{"field": "spent", "operator": "gte", "value": "100"}},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from send, got %d", resp.StatusCode)
	}
	var result service.SendCampaignResult
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Audience != 1 || result.Sent != 1 {
		t.Errorf("unexpected send result: %+v", result)
	}

	resp = a.get(t, "/api/campaigns/summaries")
	var summaries struct {
		Data []struct {
			CampaignID string `json:"campaignId"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&summaries)
	if len(summaries.Data) != 1 || summaries.Data[0].CampaignID != result.CampaignID || summaries.Data[0].Status != "All Sent" {
		t.Errorf("unexpected summaries: %+v", summaries)
	}
}

func TestRouter_HealthAndRoot(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/", "/health"} {
		if resp := a.get(t, path); resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
	if resp := a.get(t, "/api/unknown"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", resp.StatusCode)
	}
}

func TestRouter_CORS(t *testing.T) {
	a := newApp(t)

	req, _ := http.NewRequest(http.MethodOptions, a.server.URL+"/api/customers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, a.server.URL+"/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for disallowed origin, got %q", got)
	}
}
