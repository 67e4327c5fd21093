package admin

// PriceUpsertRequest creates or updates one catalog price row. Product
// and size accept any spelling the conversation parsers resolve, so
// "hlso" and "16-20" store as HLSO 16/20.
type PriceUpsertRequest struct {
	Product   string  `json:"product" validate:"required,productcode"`
	Size      string  `json:"size" validate:"required,sizecode"`
	BasePrice float64 `json:"basePrice" validate:"required,gt=0"`
	// FixedCost falls back to the configured per-kilo default when
	// omitted, the same fallback the price sheet loader applies.
	FixedCost *float64 `json:"fixedCost" validate:"omitempty,gte=0"`
	// Available defaults to true: a price an operator writes is meant
	// to be quoted.
	Available *bool `json:"available"`
}

// PriceDeleteRequest identifies the row to drop. Product and size bind
// from query parameters; size spellings like "16/20" do not survive as
// path segments.
type PriceDeleteRequest struct {
	Product string `form:"product" validate:"required,productcode"`
	Size    string `form:"size" validate:"required,sizecode"`
}

// FreightUpsertRequest creates or updates one destination rate.
type FreightUpsertRequest struct {
	Destination string  `json:"destination" validate:"required,min=2,max=100"`
	Rate        float64 `json:"rate" validate:"required,gt=0"`
	// UsesPounds marks routes quoted per pound, the US convention.
	UsesPounds bool `json:"usesPounds"`
}
