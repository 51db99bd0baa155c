package vehicle

import (
	"strings"

	"github.com/Simplici0/importcalc/internal/apperr"
)

const (
	clarifyConfidenceStep = 20
	clarifyConfidenceCap  = 95
)

// Clarify applies user answers to an analysis. Empty answers are ignored; when at least
// one answer is applied the confidence rises by a fixed step, up to a cap.
func Clarify(a Analysis, answers map[string]any) (Analysis, error) {
	applied := 0
	for key, raw := range answers {
		value := cleanText(raw)
		if value == "" {
			continue
		}
		if err := a.apply(key, value); err != nil {
			return Analysis{}, err
		}
		applied++
	}
	if applied > 0 {
		a.Confidence = min(a.Confidence+clarifyConfidenceStep, clarifyConfidenceCap)
	}
	return a, nil
}

func (a *Analysis) apply(key, value string) error {
	switch strings.ToLower(key) {
	case "make":
		a.Make = value
	case "model":
		a.Model = value
	case "modelyear", "year":
		year := intOr(value, -1)
		if year < 1900 {
			return apperr.Invalid("invalid model year %q", value).With("field", key)
		}
		a.ModelYear = year
	case "engine", "enginedescription":
		a.EngineDescription = value
	case "fueltype", "fuel":
		ft, err := ParseFuelType(value)
		if err != nil {
			return err
		}
		a.FuelType = ft
	case "trim":
		a.Trim = value
	case "co2":
		co2 := intOr(value, -1)
		if co2 < 0 {
			return apperr.Invalid("invalid co2 %q", value).With("field", key)
		}
		a.CO2 = co2
	case "condition":
		a.Condition = value
	case "modifications":
		a.Modifications = value
	default:
		return apperr.Invalid("unknown field %q", key).With("field", key)
	}
	return nil
}
