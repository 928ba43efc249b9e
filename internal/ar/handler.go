package ar

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/httpx"
)

// Handler serves invoice and payment endpoints.
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
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/aging", h.aging)
		r.Get("/export.csv", h.exportCSV)
		r.Get("/{invoiceID}", h.get)
		r.Post("/{invoiceID}/payments", h.recordPayment)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to list invoices")
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "invoiceID")
	if _, err := uuid.Parse(invoiceID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
		return
	}
	invoice, err := h.service.Get(r.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
			return
		}
		h.logger.Error("get invoice", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to load invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "invoiceID")
	if _, err := uuid.Parse(invoiceID); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	receipt, err := h.service.RecordPayment(r.Context(), invoiceID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
		case errors.Is(err, ErrInvalidAmount):
			httpx.Problem(w, http.StatusBadRequest, "Invalid Amount", "payment amount must be positive")
		default:
			h.logger.Error("record payment", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to record payment")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.Aging(r.Context())
	if err != nil {
		h.logger.Error("invoice aging", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to build aging report")
		return
	}
	httpx.JSON(w, http.StatusOK, buckets)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	if err := h.service.ExportCSV(r.Context(), w); err != nil {
		h.logger.Error("export invoices", slog.Any("error", err))
	}
}
