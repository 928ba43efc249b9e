package inventory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/httpx"
	"github.com/cloudforge-erp/cloudforge-erp/internal/shared"
)

// Handler wires HTTP endpoints for the inventory ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory", h.list)
	r.Put("/inventory/{materialID}", h.adjust)
	r.Get("/inventory/{materialID}/purchases", h.purchases)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.Levels(r.Context())
	if err != nil {
		h.logger.Error("list inventory", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, levels)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	materialID := chi.URLParam(r, "materialID")
	if _, err := uuid.Parse(materialID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no inventory record for material")
		return
	}
	var req AdjustInventoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var (
		inv Inventory
		err error
	)
	switch req.Operation {
	case "add":
		inv, err = h.service.Receive(r.Context(), ReceiveInput{
			MaterialID:     materialID,
			Quantity:       req.Quantity,
			Vendor:         req.Vendor,
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
	case "remove":
		inv, err = h.service.AdjustDown(r.Context(), materialID, req.Quantity)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) purchases(w http.ResponseWriter, r *http.Request) {
	materialID := chi.URLParam(r, "materialID")
	if _, err := uuid.Parse(materialID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no inventory record for material")
		return
	}
	entries, err := h.service.Purchases(r.Context(), materialID)
	if err != nil {
		h.logger.Error("list purchases", slog.Any("error", err), slog.String("material_id", materialID))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("inventory operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
