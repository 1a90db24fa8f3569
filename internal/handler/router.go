// internal/handler/router.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/unclebandit/xeno-crm/internal/controller"
)

// Controllers groups the HTTP controllers mounted by NewRouter.
type Controllers struct {
	Ingest   *controller.IngestController
	Customer *controller.CustomerController
	Delivery *controller.DeliveryController
	Campaign *controller.CampaignController
	Segment  *controller.SegmentController
}

// NewRouter builds the API routes. allowedOrigins configures CORS; "*" allows any origin.
func NewRouter(c Controllers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("✅ Xeno CRM Backend is Live"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Ingestion
		r.Post("/customers", c.Ingest.AcceptCustomer)
		r.Post("/orders", c.Ingest.AcceptOrder)
		r.Get("/ingestion/stats", c.Ingest.Stats)
		r.Get("/ingestion/dead-letters", c.Ingest.ListDeadLetters)

		// Applied records
		r.Get("/customers", c.Customer.ListCustomers)
		r.Get("/customers/{id}", c.Customer.GetCustomer)
		r.Get("/customers/{id}/orders", c.Customer.ListOrders)

		// Delivery receipts
		r.Post("/delivery-receipt", c.Delivery.RecordReceipt)

		// Campaign routes
		r.Get("/campaigns", c.Campaign.ListCampaigns)
		r.Get("/campaigns/summaries", c.Campaign.ListSummaries)
		r.Post("/campaigns/send", c.Campaign.SendCampaign)

		// Segments
		r.Post("/segments", c.Segment.CreateSegment)
		r.Get("/segments", c.Segment.ListSegments)
		r.Post("/segments/preview", c.Segment.Preview)
		r.Get("/segments/{id}", c.Segment.GetSegment)
		r.Get("/segments/{id}/audience", c.Segment.SegmentAudience)
	})

	return r
}
