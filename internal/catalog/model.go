package catalog

import "time"

// Material describes a metal-stock catalog entry. Dimensions carry their own
// unit labels because stock arrives in mixed imperial/metric sizing.
type Material struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Grade          string    `json:"grade"`
	Length         float64   `json:"length"`
	LengthUnits    string    `json:"lengthUnits"`
	Width          float64   `json:"width"`
	WidthUnits     string    `json:"widthUnits"`
	Thickness      float64   `json:"thickness"`
	ThicknessUnits string    `json:"thicknessUnits"`
	DefaultPrice   float64   `json:"defaultPrice"`
	PriceUnits     string    `json:"priceUnits"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MaterialWithStock is the list read model used by the catalog endpoints.
type MaterialWithStock struct {
	Material
	OnHand    float64 `json:"onHand"`
	Allocated float64 `json:"allocated"`
}
