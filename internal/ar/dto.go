package ar

import "time"

// RecordPaymentRequest is the payload for recording a receipt.
type RecordPaymentRequest struct {
	Amount    float64    `json:"amount" validate:"required,gt=0"`
	Method    string     `json:"method" validate:"omitempty,max=50"`
	Reference string     `json:"reference" validate:"omitempty,max=120"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
}
