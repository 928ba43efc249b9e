package orders

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("sales order not found")
	ErrConflict = errors.New("quote already has a sales order")
)

// SalesOrder is the committed form of an approved quote.
type SalesOrder struct {
	ID           string    `json:"id"`
	QuoteID      string    `json:"quoteId"`
	CustomerName string    `json:"customerName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ShipmentInfo is a read model of a shipment attached to an order.
type ShipmentInfo struct {
	ID                string     `json:"id"`
	Carrier           string     `json:"carrier"`
	Tracking          string     `json:"tracking"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// OrderWithShipments is the list read model for sales orders.
type OrderWithShipments struct {
	SalesOrder
	QuoteTotal float64        `json:"quoteTotal"`
	Status     string         `json:"status"`
	Shipments  []ShipmentInfo `json:"shipments"`
}
