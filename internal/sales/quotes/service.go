package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudforge-erp/cloudforge-erp/internal/catalog"
	salesshared "github.com/cloudforge-erp/cloudforge-erp/internal/sales/shared"
)

// RepositoryPort is the persistence surface needed by the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context) ([]Quote, error)
}

// MaterialPort is the slice of the catalog the service needs to
// verify that quoted materials exist.
type MaterialPort interface {
	Get(ctx context.Context, id string) (*catalog.Material, error)
}

// Service implements quote lifecycle operations.
type Service struct {
	repo      RepositoryPort
	materials MaterialPort
}

func NewService(repo RepositoryPort, materials MaterialPort) *Service {
	return &Service{repo: repo, materials: materials}
}

// Create persists a draft quote. The total is always recomputed
// from the submitted lines, never trusted from the client. Prices
// are taken as submitted so quotes can discount below catalog price.
func (s *Service) Create(ctx context.Context, req CreateQuoteRequest) (*Quote, error) {
	for _, item := range req.Items {
		if _, err := s.materials.Get(ctx, item.MaterialID); err != nil {
			return nil, fmt.Errorf("material %s: %w", item.MaterialID, err)
		}
	}

	now := time.Now().UTC()
	quote := &Quote{
		ID:           uuid.NewString(),
		CustomerName: req.CustomerName,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	lineTotals := make([]float64, 0, len(req.Items))
	for i, item := range req.Items {
		quote.Items = append(quote.Items, QuoteItem{
			ID:         uuid.NewString(),
			QuoteID:    quote.ID,
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Notes:      item.Notes,
			LineOrder:  i,
		})
		lineTotals = append(lineTotals, salesshared.LineTotal(item.Quantity, item.Price))
	}
	quote.Total = salesshared.SumMoney(lineTotals...)

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertQuote(ctx, *quote); err != nil {
			return fmt.Errorf("insert quote: %w", err)
		}
		for _, item := range quote.Items {
			if err := tx.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert quote item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Get returns a quote with its items.
func (s *Service) Get(ctx context.Context, id string) (*Quote, error) {
	return s.repo.Get(ctx, id)
}

// List returns all quotes with items, newest first.
func (s *Service) List(ctx context.Context) ([]Quote, error) {
	return s.repo.List(ctx)
}
