package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, materialID string) (Inventory, error)
	ListLevels(ctx context.Context) ([]Level, error)
	ListPurchases(ctx context.Context, materialID string) ([]PurchaseHistory, error)
}

// IdempotencyPort guards receipt replays. Satisfied by shared.IdempotencyStore.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service coordinates inventory ledger operations.
type Service struct {
	repo        RepositoryPort
	idempotency IdempotencyPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, idem IdempotencyPort) *Service {
	return &Service{repo: repo, idempotency: idem}
}

// Receive increments onHand and appends a purchase history entry.
func (s *Service) Receive(ctx context.Context, input ReceiveInput) (Inventory, error) {
	if input.Quantity <= 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	insertedKey := false
	if s.idempotency != nil && input.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "inventory"); err != nil {
			return Inventory{}, err
		}
		insertedKey = true
	}

	var result Inventory
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetForUpdate(ctx, input.MaterialID)
		if err != nil {
			return err
		}
		inv.OnHand += input.Quantity
		if err := tx.Save(ctx, inv); err != nil {
			return err
		}
		entry := PurchaseHistory{
			ID:         uuid.NewString(),
			MaterialID: input.MaterialID,
			Quantity:   input.Quantity,
			Vendor:     input.Vendor,
			ReceivedAt: time.Now().UTC(),
		}
		if err := tx.InsertPurchase(ctx, entry); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return Inventory{}, err
	}
	return result, nil
}

// AdjustDown decrements onHand for manual corrections. No history entry.
func (s *Service) AdjustDown(ctx context.Context, materialID string, quantity float64) (Inventory, error) {
	if quantity <= 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	var result Inventory
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if inv.OnHand < quantity {
			return fmt.Errorf("%w: material %s has %g on hand, need %g", ErrInsufficientStock, materialID, inv.OnHand, quantity)
		}
		inv.OnHand -= quantity
		if err := tx.Save(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return Inventory{}, err
	}
	return result, nil
}

// Allocate reserves stock for an order inside its own transaction.
// Multi-item callers should instead run the package-level Allocate against
// their transaction so all items commit or roll back together.
func (s *Service) Allocate(ctx context.Context, materialID string, quantity float64) (Inventory, error) {
	var result Inventory
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := Allocate(ctx, tx, materialID, quantity)
		if err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return Inventory{}, err
	}
	return result, nil
}

// Release drops an allocation inside its own transaction.
func (s *Service) Release(ctx context.Context, materialID string, quantity float64) (Inventory, error) {
	var result Inventory
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := Release(ctx, tx, materialID, quantity)
		if err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return Inventory{}, err
	}
	return result, nil
}

// Level returns the current counters for one material.
func (s *Service) Level(ctx context.Context, materialID string) (Inventory, error) {
	return s.repo.Get(ctx, materialID)
}

// Levels lists all inventory records joined with their material.
func (s *Service) Levels(ctx context.Context) ([]Level, error) {
	return s.repo.ListLevels(ctx)
}

// Purchases lists the receipt history for a material, newest first.
func (s *Service) Purchases(ctx context.Context, materialID string) ([]PurchaseHistory, error) {
	return s.repo.ListPurchases(ctx, materialID)
}
