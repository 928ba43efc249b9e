package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/httpx"
)

// Handler serves material catalog endpoints.
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
	r.Route("/materials", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMaterialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	material, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create material", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to create material")
		return
	}
	httpx.JSON(w, http.StatusCreated, material)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.List(r.Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSON(w, http.StatusOK, []MaterialWithStock{})
			return
		}
		h.logger.Error("list materials", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to list materials")
		return
	}
	httpx.JSON(w, http.StatusOK, materials)
}
