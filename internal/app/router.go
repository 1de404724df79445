package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bismi-foods/backoffice/internal/customers"
	"github.com/bismi-foods/backoffice/internal/inventory"
	"github.com/bismi-foods/backoffice/internal/invoices"
	"github.com/bismi-foods/backoffice/internal/orders"
	"github.com/bismi-foods/backoffice/internal/payments"
	"github.com/bismi-foods/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	PaymentsHandler  *payments.Handler
	InventoryHandler *inventory.Handler
	InvoicesHandler  *invoices.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with back office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(params.Logger, params.Config) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/customers", params.CustomersHandler.MountRoutes)
		api.Route("/orders", params.OrdersHandler.MountRoutes)
		params.PaymentsHandler.MountRoutes(api)
		api.Route("/inventory", params.InventoryHandler.MountRoutes)
		api.Route("/invoices", params.InvoicesHandler.MountRoutes)
		if params.JobsHandler != nil {
			api.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
