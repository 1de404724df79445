package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bismi-foods/backoffice/internal/platform/httpx"
)

// Handler manages payment recording endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers payment routes. They hang off the customer and
// order resources rather than a /payments root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/customers/{customerID}/payments", h.recordBatch)
	r.Post("/customers/{customerID}/payments/preview", h.previewBatch)
	r.Get("/customers/{customerID}/payments", h.listByCustomer)
	r.Post("/orders/{orderID}/payments", h.recordDirect)
	r.Get("/orders/{orderID}/payments", h.listByOrder)
}

func (h *Handler) recordBatch(w http.ResponseWriter, r *http.Request) {
	var req SmartPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.RecordBatch(r.Context(), chi.URLParam(r, "customerID"), req)
	if err != nil {
		h.logger.Error("record payment batch", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Failed > 0 {
		// Some orders went through, some did not. 207 tells the caller
		// to inspect the per-order allocations instead of retrying blind.
		status = http.StatusMultiStatus
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) previewBatch(w http.ResponseWriter, r *http.Request) {
	var req SmartPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.PreviewBatch(r.Context(), chi.URLParam(r, "customerID"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) recordDirect(w http.ResponseWriter, r *http.Request) {
	var req DirectPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.RecordDirect(r.Context(), chi.URLParam(r, "orderID"), req)
	if err != nil {
		h.logger.Error("record direct payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) listByCustomer(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListByCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments})
}

func (h *Handler) listByOrder(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListByOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments})
}
