package ar

import (
	"errors"
	"time"

	salesshared "github.com/cloudforge-erp/cloudforge-erp/internal/sales/shared"
)

// InvoiceStatus enumerates invoice settlement states.
type InvoiceStatus string

const (
	StatusIssued        InvoiceStatus = "ISSUED"
	StatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	StatusPaid          InvoiceStatus = "PAID"
)

var (
	ErrNotFound      = errors.New("invoice not found")
	ErrConflict      = errors.New("sales order is already invoiced")
	ErrInvalidAmount = errors.New("payment amount must be positive")
)

// Invoice is a receivable issued against exactly one sales order.
type Invoice struct {
	ID           string        `json:"id"`
	SalesOrderID string        `json:"salesOrderId"`
	Number       string        `json:"number"`
	Status       InvoiceStatus `json:"status"`
	DueDate      time.Time     `json:"dueDate"`
	Subtotal     float64       `json:"subtotal"`
	TaxRate      float64       `json:"taxRate"`
	Discount     float64       `json:"discount"`
	Total        float64       `json:"total"`
	CreatedAt    time.Time     `json:"createdAt"`
	Payments     []Payment     `json:"payments"`
}

// Payment is a single receipt recorded against an invoice.
type Payment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoiceId"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paidAt"`
}

// PaymentReceipt is the outcome of recording a payment: the stored
// receipt and the settlement state the invoice landed in.
type PaymentReceipt struct {
	Payment       Payment       `json:"payment"`
	InvoiceStatus InvoiceStatus `json:"invoiceStatus"`
	Outstanding   float64       `json:"outstanding"`
}

// AgingBucket is one row of the receivables aging report.
type AgingBucket struct {
	Bucket      string  `json:"bucket"`
	Invoices    int     `json:"invoices"`
	Outstanding float64 `json:"outstanding"`
}

// NextStatus derives the settlement status from the paid sum. The
// transition is monotonic: once PAID an invoice never moves back,
// even if a correcting entry drops the sum below the total.
func NextStatus(current InvoiceStatus, paid, total float64) InvoiceStatus {
	if current == StatusPaid {
		return StatusPaid
	}
	switch {
	case salesshared.CompareMoney(paid, total) >= 0:
		return StatusPaid
	case paid > 0:
		return StatusPartiallyPaid
	default:
		return StatusIssued
	}
}

// Outstanding is the unpaid remainder of the invoice.
func (inv *Invoice) Outstanding() float64 {
	paid := 0.0
	for _, p := range inv.Payments {
		paid += p.Amount
	}
	remaining := salesshared.SumMoney(inv.Total, -paid)
	if remaining < 0 {
		return 0
	}
	return remaining
}
