// Package currency converts purchase prices between euros, dirhams and dollars
// using EUR-based rates from an external provider.
package currency

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/importcalc/internal/apperr"
)

// Currency is an ISO 4217 code supported by the converter.
type Currency string

const (
	EUR Currency = "EUR"
	AED Currency = "AED"
	USD Currency = "USD"
)

// ParseCurrency accepts a case-insensitive code. Empty means EUR.
func ParseCurrency(raw string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(raw))); c {
	case "":
		return EUR, nil
	case EUR, AED, USD:
		return c, nil
	default:
		return "", apperr.Invalid("unsupported currency %q", raw)
	}
}

// Source tells where a snapshot came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceStored   Source = "stored"
	SourceFallback Source = "fallback"
)

// FallbackUpdatedAt is the UpdatedAt marker of the static table.
const FallbackUpdatedAt = "fallback"

// Snapshot holds the two EUR cross rates everything else is derived from.
type Snapshot struct {
	EURToAED  float64
	EURToUSD  float64
	UpdatedAt string
	Source    Source
	FetchedAt time.Time
}

// FallbackSnapshot is the static table used when no live or stored rates exist.
func FallbackSnapshot() Snapshot {
	return Snapshot{
		EURToAED:  3.97,
		EURToUSD:  1.08,
		UpdatedAt: FallbackUpdatedAt,
		Source:    SourceFallback,
	}
}

// Valid reports whether both cross rates are usable.
func (s Snapshot) Valid() bool {
	return s.EURToAED > 0 && s.EURToUSD > 0
}

// Rates are the six directional multipliers.
type Rates struct {
	EURToAED float64
	EURToUSD float64
	AEDToEUR float64
	USDToEUR float64
	AEDToUSD float64
	USDToAED float64
}

// Rates derives every pair from the two EUR rates so that round trips are consistent.
func (s Snapshot) Rates() Rates {
	return Rates{
		EURToAED: s.EURToAED,
		EURToUSD: s.EURToUSD,
		AEDToEUR: 1 / s.EURToAED,
		USDToEUR: 1 / s.EURToUSD,
		AEDToUSD: s.EURToUSD / s.EURToAED,
		USDToAED: s.EURToAED / s.EURToUSD,
	}
}

// Multiplier returns the factor converting an amount in from into to.
func (s Snapshot) Multiplier(from, to Currency) (float64, error) {
	if !s.Valid() {
		return 0, apperr.Invalid("exchange rate snapshot is empty")
	}
	r := s.Rates()
	switch {
	case from == to:
		return 1, nil
	case from == EUR && to == AED:
		return r.EURToAED, nil
	case from == EUR && to == USD:
		return r.EURToUSD, nil
	case from == AED && to == EUR:
		return r.AEDToEUR, nil
	case from == USD && to == EUR:
		return r.USDToEUR, nil
	case from == AED && to == USD:
		return r.AEDToUSD, nil
	case from == USD && to == AED:
		return r.USDToAED, nil
	default:
		return 0, apperr.Invalid("unsupported conversion %s -> %s", from, to)
	}
}

// Convert converts amount from one currency to another, rounded to cents.
func (s Snapshot) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	m, err := s.Multiplier(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(decimal.NewFromFloat(m)).Round(2), nil
}
