package delivery

import (
	"errors"
	"time"

	"github.com/cloudforge-erp/cloudforge-erp/internal/ar"
)

var ErrOrderNotFound = errors.New("sales order not found")

// Shipment records the physical dispatch of a sales order. An order
// ships exactly once and the shipment carries the invoice with it.
type Shipment struct {
	ID                string     `json:"id"`
	SalesOrderID      string     `json:"salesOrderId"`
	Carrier           string     `json:"carrier"`
	Tracking          string     `json:"tracking"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ShipmentResult is the combined outcome of creating a shipment.
type ShipmentResult struct {
	Shipment Shipment   `json:"shipment"`
	Invoice  ar.Invoice `json:"invoice"`
}

// OrderInfo is the slice of a sales order the shipment workflow needs.
type OrderInfo struct {
	ID           string
	CustomerName string
	Total        float64
	Items        []OrderLine
}

// OrderLine is one allocated material line.
type OrderLine struct {
	MaterialID string
	Quantity   float64
}
