package inventory

// AdjustInventoryRequest mirrors the PUT /inventory/{materialId} body.
// "add" receives stock from a vendor; "remove" is a manual correction.
type AdjustInventoryRequest struct {
	Operation string  `json:"operation" validate:"required,oneof=add remove"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	Vendor    string  `json:"vendor" validate:"omitempty,max=120"`
}
