package delivery

import "time"

// CreateShipmentRequest is the payload for shipping a sales order.
type CreateShipmentRequest struct {
	Carrier           string     `json:"carrier" validate:"required,max=120"`
	Tracking          string     `json:"tracking" validate:"required,max=120"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}
