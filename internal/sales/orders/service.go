package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/quotes"
)

// QuotePort is the slice of the quote service the workflow needs.
type QuotePort interface {
	Get(ctx context.Context, id string) (*quotes.Quote, error)
}

// StockPort reads current inventory levels for the advisory pre-check.
type StockPort interface {
	Level(ctx context.Context, materialID string) (inventory.Inventory, error)
}

// RepositoryPort is the persistence surface needed by the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id string) (*SalesOrder, error)
	List(ctx context.Context) ([]OrderWithShipments, error)
}

// TxRepository composes order writes with the inventory ledger so
// approval commits or rolls back as one unit.
type TxRepository interface {
	MarkQuoteApproved(ctx context.Context, quoteID string) (bool, error)
	InsertOrder(ctx context.Context, order SalesOrder) error
	Inventory() inventory.TxRepository
}

// Service implements the quote approval workflow.
type Service struct {
	repo   RepositoryPort
	quotes QuotePort
	stock  StockPort
}

func NewService(repo RepositoryPort, quotePort QuotePort, stock StockPort) *Service {
	return &Service{repo: repo, quotes: quotePort, stock: stock}
}

// ApproveQuote transitions a draft quote to APPROVED, creates the
// sales order and allocates inventory for every line. Any failure
// rolls the whole transition back, so a quote is never approved
// with a partial allocation.
func (s *Service) ApproveQuote(ctx context.Context, quoteID string) (*SalesOrder, error) {
	quote, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != quotes.StatusDraft {
		return nil, quotes.ErrInvalidState
	}

	// Advisory check outside the transaction. The authoritative
	// check happens under row locks inside Allocate.
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range quote.Items {
		g.Go(func() error {
			level, err := s.stock.Level(gctx, item.MaterialID)
			if err != nil {
				return fmt.Errorf("check stock for %s: %w", item.MaterialID, err)
			}
			if level.OnHand < item.Quantity {
				return fmt.Errorf("material %s: requested %v, on hand %v: %w",
					item.MaterialID, item.Quantity, level.OnHand, inventory.ErrInsufficientStock)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := &SalesOrder{
		ID:           uuid.NewString(),
		QuoteID:      quote.ID,
		CustomerName: quote.CustomerName,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		approved, err := tx.MarkQuoteApproved(ctx, quote.ID)
		if err != nil {
			return fmt.Errorf("approve quote: %w", err)
		}
		if !approved {
			return quotes.ErrInvalidState
		}
		if err := tx.InsertOrder(ctx, *order); err != nil {
			return err
		}
		ledger := tx.Inventory()
		for _, item := range quote.Items {
			if _, err := inventory.Allocate(ctx, ledger, item.MaterialID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns a single sales order.
func (s *Service) Get(ctx context.Context, id string) (*SalesOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns all sales orders with their shipments, newest first.
func (s *Service) List(ctx context.Context) ([]OrderWithShipments, error) {
	return s.repo.List(ctx)
}
