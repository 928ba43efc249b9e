package orders

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/httpx"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/quotes"
)

// Handler serves sales order endpoints, including quote approval.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/quotes/{quoteID}/approve", h.approve)
	r.Route("/sales-orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{orderID}", h.get)
	})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "quoteID")
	if _, err := uuid.Parse(quoteID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "quote not found")
		return
	}
	order, err := h.service.ApproveQuote(r.Context(), quoteID)
	if err != nil {
		h.respondApproveError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) respondApproveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quotes.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "quote not found")
	case errors.Is(err, quotes.ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Conflict", "quote is not in DRAFT state")
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "quote already has a sales order")
	case errors.Is(err, inventory.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", "no inventory record for quoted material")
	default:
		h.logger.Error("approve quote", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to approve quote")
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if _, err := uuid.Parse(orderID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sales order not found")
		return
	}
	order, err := h.service.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "sales order not found")
			return
		}
		h.logger.Error("get sales order", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to load sales order")
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list sales orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to list sales orders")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
