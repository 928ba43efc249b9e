package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudforge-erp/cloudforge-erp/internal/ar"
	"github.com/cloudforge-erp/cloudforge-erp/internal/catalog"
	"github.com/cloudforge-erp/cloudforge-erp/internal/delivery"
	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/orders"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/quotes"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	InventoryHandler *inventory.Handler
	QuoteHandler     *quotes.Handler
	OrderHandler     *orders.Handler
	DeliveryHandler  *delivery.Handler
	ARHandler        *ar.Handler
}

// NewRouter constructs the chi.Router with CloudForge defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.CatalogHandler.MountRoutes(r)
	params.InventoryHandler.MountRoutes(r)
	params.QuoteHandler.MountRoutes(r)
	params.OrderHandler.MountRoutes(r)
	params.DeliveryHandler.MountRoutes(r)
	params.ARHandler.MountRoutes(r)

	return r
}
