package vehicle

import (
	"context"
	"strings"

	"github.com/Simplici0/importcalc/internal/apperr"
	"github.com/Simplici0/importcalc/internal/llm"
)

// PriceRange is a resale estimate.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Notes    string  `json:"notes"`
}

// EstimateMarketPrice asks the model for an EU resale range. A nil range with a nil
// error means the model answered but gave no usable figures.
func (a *Analyzer) EstimateMarketPrice(ctx context.Context, d Description) (*PriceRange, error) {
	if strings.TrimSpace(d.Make) == "" && strings.TrimSpace(d.Model) == "" {
		return nil, apperr.Invalid("make or model is required")
	}
	text, err := a.complete(ctx, llm.Request{Prompt: marketPrompt(d)})
	if err != nil {
		return nil, err
	}
	return ParsePriceRange(text), nil
}

// ParsePriceRange reads a {min, max, currency, notes} object, or returns nil.
func ParsePriceRange(text string) *PriceRange {
	fields, err := decodeObject(text)
	if err != nil {
		return nil
	}
	lo, okLo := amount(fields["min"])
	hi, okHi := amount(fields["max"])
	if !okLo || !okHi || lo <= 0 || hi < lo {
		return nil
	}
	currency := strings.ToUpper(cleanText(fields["currency"]))
	if currency == "" {
		currency = "EUR"
	}
	return &PriceRange{
		Min:      lo,
		Max:      hi,
		Currency: currency,
		Notes:    cleanText(fields["notes"]),
	}
}
