package quotes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cloudforge-erp/cloudforge-erp/internal/catalog"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/httpx"
)

// Handler serves quotation endpoints. Quote approval is mounted by
// the sales order handler because approval produces an order.
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
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{quoteID}", h.get)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quote, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("create quote", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to create quote")
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "quoteID")
	if _, err := uuid.Parse(quoteID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "quote not found")
		return
	}
	quote, err := h.service.Get(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "quote not found")
			return
		}
		h.logger.Error("get quote", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to load quote")
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list quotes", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to list quotes")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
