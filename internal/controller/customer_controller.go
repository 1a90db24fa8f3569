package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/xeno-crm/internal/errors"
	"github.com/unclebandit/xeno-crm/internal/repository"
)

// CustomerController serves applied customer and order records.
type CustomerController struct {
	CustomerRepo repository.CustomerRepositoryInterface
	OrderRepo    repository.OrderRepositoryInterface
}

func (c *CustomerController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := c.CustomerRepo.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  customers,
		"count": len(customers),
	})
}

func (c *CustomerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	customer, err := c.CustomerRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if customer == nil {
		writeError(w, appErrors.NewNotFound("customer", id))
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// ListOrders returns the customer's orders. Orders are not checked against
// customers, so an unknown customer simply has none.
func (c *CustomerController) ListOrders(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	orders, err := c.OrderRepo.ListByCustomer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  orders,
		"count": len(orders),
	})
}
