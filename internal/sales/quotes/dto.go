package quotes

// CreateQuoteRequest is the payload for creating a new draft quote.
type CreateQuoteRequest struct {
	CustomerName string                   `json:"customerName" validate:"required,max=200"`
	Items        []CreateQuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateQuoteItemRequest is one requested line.
type CreateQuoteItemRequest struct {
	MaterialID string  `json:"materialId" validate:"required,uuid4"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}
