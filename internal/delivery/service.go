package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudforge-erp/cloudforge-erp/internal/ar"
	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
)

// Payment terms granted on every invoice.
const paymentTermsDays = 30

// RepositoryPort is the persistence surface needed by the service.
type RepositoryPort interface {
	GetOrderForShipment(ctx context.Context, orderID string) (*OrderInfo, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListForOrder(ctx context.Context, orderID string) ([]Shipment, error)
}

// TxRepository composes shipment writes with the inventory ledger
// and invoice issuance so the whole dispatch commits as one unit.
type TxRepository interface {
	LockOrder(ctx context.Context, orderID string) error
	InsertShipment(ctx context.Context, s Shipment) error
	Inventory() inventory.TxRepository
	Invoices() ar.InvoiceTxRepository
}

// Service implements the shipment workflow.
type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateShipment dispatches a sales order: it records the shipment,
// releases the inventory allocation for every line and issues the
// invoice, all in one transaction. A second shipment for the same
// order fails because the order is already invoiced.
func (s *Service) CreateShipment(ctx context.Context, orderID string, req CreateShipmentRequest) (*ShipmentResult, error) {
	order, err := s.repo.GetOrderForShipment(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shipment := Shipment{
		ID:                uuid.NewString(),
		SalesOrderID:      order.ID,
		Carrier:           req.Carrier,
		Tracking:          req.Tracking,
		EstimatedDelivery: req.EstimatedDelivery,
		CreatedAt:         now,
	}
	invoice := ar.Invoice{
		ID:           uuid.NewString(),
		SalesOrderID: order.ID,
		Status:       ar.StatusIssued,
		DueDate:      now.AddDate(0, 0, paymentTermsDays),
		Subtotal:     order.Total,
		TaxRate:      0,
		Discount:     0,
		Total:        order.Total,
		CreatedAt:    now,
		Payments:     []ar.Payment{},
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockOrder(ctx, order.ID); err != nil {
			return err
		}
		invoiced, err := tx.Invoices().ExistsForOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("check existing invoice: %w", err)
		}
		if invoiced {
			return ar.ErrConflict
		}
		if err := tx.InsertShipment(ctx, shipment); err != nil {
			return fmt.Errorf("insert shipment: %w", err)
		}
		ledger := tx.Inventory()
		for _, line := range order.Items {
			if _, err := inventory.Release(ctx, ledger, line.MaterialID, line.Quantity); err != nil {
				return err
			}
		}
		number, err := tx.Invoices().NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("next invoice number: %w", err)
		}
		invoice.Number = number
		if err := tx.Invoices().InsertInvoice(ctx, invoice); err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ShipmentResult{Shipment: shipment, Invoice: invoice}, nil
}

// ListForOrder returns the shipments recorded for a sales order.
func (s *Service) ListForOrder(ctx context.Context, orderID string) ([]Shipment, error) {
	if _, err := s.repo.GetOrderForShipment(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListForOrder(ctx, orderID)
}
