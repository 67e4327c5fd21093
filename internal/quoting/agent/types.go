package agent

// SaveExtractionInput is the structured input for the SaveExtraction tool.
type SaveExtractionInput struct {
	Product       string   `json:"product"`       // HOSO, HLSO, P&D IQF, P&D BLOQUE, EZ PEEL, PuD-EUROPA, PuD-EEUU, COOKED, or empty
	Size          string   `json:"size"`          // Grade code such as 16/20 or U15, or empty
	GlaseoPct     *int     `json:"glaseoPct"`     // Glaze percentage when stated
	Freight       *float64 `json:"freight"`       // Freight per unit when stated, never guessed
	Destination   string   `json:"destination"`   // Shipping destination when stated
	IsDDP         bool     `json:"isDdp"`         // True only for delivered-duty-paid requests
	QuantityValue *float64 `json:"quantityValue"` // Requested amount when stated
	QuantityUnit  string   `json:"quantityUnit"`  // kg or lb
	ClientName    string   `json:"clientName"`    // End client when the message names one
	Language      string   `json:"language"`      // es or en
	Intent        string   `json:"intent"`        // quote, greeting, unknown
	Confidence    float64  `json:"confidence"`    // 0..1 for the extraction as a whole
}

type SaveExtractionOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
