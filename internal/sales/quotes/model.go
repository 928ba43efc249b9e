package quotes

import (
	"errors"
	"time"
)

// QuoteStatus enumerates the quote lifecycle.
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "DRAFT"
	StatusApproved QuoteStatus = "APPROVED"
)

var (
	ErrNotFound     = errors.New("quote not found")
	ErrInvalidState = errors.New("quote is not in an approvable state")
)

// Quote is a priced offer to a customer. Totals are computed
// server side from the line items.
type Quote struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Status       QuoteStatus `json:"status"`
	Total        float64     `json:"total"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Items        []QuoteItem `json:"items"`
}

// QuoteItem is a single material line on a quote.
type QuoteItem struct {
	ID         string  `json:"id"`
	QuoteID    string  `json:"quoteId"`
	MaterialID string  `json:"materialId"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Notes      *string `json:"notes,omitempty"`
	LineOrder  int     `json:"lineOrder"`
}
