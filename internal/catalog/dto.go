package catalog

// CreateMaterialRequest mirrors the POST /materials body.
type CreateMaterialRequest struct {
	Name           string  `json:"name" validate:"required,max=120"`
	Grade          string  `json:"grade" validate:"required,max=40"`
	Length         float64 `json:"length" validate:"required,gt=0"`
	LengthUnits    string  `json:"lengthUnits" validate:"required,max=20"`
	Width          float64 `json:"width" validate:"required,gt=0"`
	WidthUnits     string  `json:"widthUnits" validate:"required,max=20"`
	Thickness      float64 `json:"thickness" validate:"required,gt=0"`
	ThicknessUnits string  `json:"thicknessUnits" validate:"required,max=20"`
	DefaultPrice   float64 `json:"defaultPrice" validate:"required,gt=0"`
	PriceUnits     string  `json:"priceUnits" validate:"required,max=20"`
}
