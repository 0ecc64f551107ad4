package models

// FieldEditsRequest carries one or more draft field edits keyed by field
// name; values are coerced by the draft setter.
type FieldEditsRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

type SendOTPRequest struct {
	// Email overrides the draft's contact email when set; normally the
	// draft value is used.
	Email string `json:"email,omitempty"`
}

type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required"`
}

type EMIRequest struct {
	Principal     float64 `json:"principal" binding:"required"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
	Months        int     `json:"months" binding:"required"`
	// Schedule includes the amortization rows in the response.
	Schedule bool `json:"schedule,omitempty"`
}

type ProjectRequest struct {
	Name           string   `json:"name" binding:"required"`
	Builder        string   `json:"builder"`
	ReraNumber     string   `json:"rera_number"`
	Location       string   `json:"location"`
	City           string   `json:"city"`
	PriceMin       float64  `json:"price_min"`
	PriceMax       float64  `json:"price_max"`
	Amenities      []string `json:"amenities"`
	PossessionDate string   `json:"possession_date"`
}
