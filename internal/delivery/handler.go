package delivery

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cloudforge-erp/cloudforge-erp/internal/ar"
	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/httpx"
)

// Handler serves shipment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/sales-orders/{orderID}/shipments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if _, err := uuid.Parse(orderID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sales order not found")
		return
	}
	var req CreateShipmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.CreateShipment(r.Context(), orderID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "sales order not found")
		case errors.Is(err, ar.ErrConflict):
			httpx.Problem(w, http.StatusConflict, "Conflict", "sales order is already shipped and invoiced")
		case errors.Is(err, inventory.ErrAllocationUnderflow):
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		default:
			h.logger.Error("create shipment", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to create shipment")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if _, err := uuid.Parse(orderID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sales order not found")
		return
	}
	shipments, err := h.service.ListForOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "sales order not found")
			return
		}
		h.logger.Error("list shipments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to list shipments")
		return
	}
	httpx.JSON(w, http.StatusOK, shipments)
}
