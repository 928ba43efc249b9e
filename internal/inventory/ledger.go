package inventory

import (
	"context"
	"fmt"
)

// The functions in this file are the allocation engine. They operate on a
// TxRepository so callers in other modules (order workflow, shipment flow)
// can run them inside their own transaction; the row lock taken by
// GetForUpdate serializes concurrent movements per material.

// Allocate moves quantity from onHand to allocated.
func Allocate(ctx context.Context, tx TxRepository, materialID string, quantity float64) (Inventory, error) {
	if quantity <= 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	inv, err := tx.GetForUpdate(ctx, materialID)
	if err != nil {
		return Inventory{}, err
	}
	if inv.OnHand < quantity {
		return Inventory{}, fmt.Errorf("%w: material %s has %g on hand, need %g", ErrInsufficientStock, materialID, inv.OnHand, quantity)
	}
	inv.OnHand -= quantity
	inv.Allocated += quantity
	if err := tx.Save(ctx, inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}

// Release removes quantity from allocated. Goods leave physical stock on
// shipment, so releasing does not restore onHand.
func Release(ctx context.Context, tx TxRepository, materialID string, quantity float64) (Inventory, error) {
	if quantity <= 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	inv, err := tx.GetForUpdate(ctx, materialID)
	if err != nil {
		return Inventory{}, err
	}
	if inv.Allocated < quantity {
		return Inventory{}, fmt.Errorf("%w: material %s has %g allocated, need %g", ErrAllocationUnderflow, materialID, inv.Allocated, quantity)
	}
	inv.Allocated -= quantity
	if err := tx.Save(ctx, inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}
