package inventory

import (
	"errors"
	"time"
)

// Inventory tracks the two stock counters for a single material.
// OnHand is physically available stock; Allocated is stock reserved by an
// open sales order but not yet shipped. Both are independently non-negative.
type Inventory struct {
	MaterialID string    `json:"materialId"`
	OnHand     float64   `json:"onHand"`
	Allocated  float64   `json:"allocated"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PurchaseHistory is an append-only record of a stock receipt.
type PurchaseHistory struct {
	ID         string    `json:"id"`
	MaterialID string    `json:"materialId"`
	Quantity   float64   `json:"quantity"`
	Vendor     string    `json:"vendor"`
	ReceivedAt time.Time `json:"date"`
}

// Level is the inventory read model joined with its material.
type Level struct {
	Inventory
	MaterialName  string `json:"materialName"`
	MaterialGrade string `json:"materialGrade"`
}

// ReceiveInput describes a stock receipt.
type ReceiveInput struct {
	MaterialID     string
	Quantity       float64
	Vendor         string
	IdempotencyKey string
}

// ErrNotFound indicates the material has no inventory record.
var ErrNotFound = errors.New("inventory: material not found")

// ErrInvalidQuantity indicates a non-positive quantity input.
var ErrInvalidQuantity = errors.New("inventory: quantity must be positive")

// ErrInsufficientStock triggered when a movement would drive onHand negative.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ErrAllocationUnderflow triggered when a release exceeds the allocated
// quantity. Seeing it outside of bad manual input points at a consistency bug.
var ErrAllocationUnderflow = errors.New("inventory: release exceeds allocation")
