// Package vehicle describes the vehicles being priced and resolves their attributes
// from photos through an external vision model.
package vehicle

import (
	"strings"

	"github.com/Simplici0/importcalc/internal/apperr"
)

// FuelType is the propulsion category used by the registration tax rules.
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
)

var fuelAliases = map[string]FuelType{
	"gasoline": FuelGasoline,
	"petrol":   FuelGasoline,
	"gas":      FuelGasoline,
	"benzina":  FuelGasoline,
	"benzin":   FuelGasoline,
	"diesel":   FuelDiesel,
	"motorina": FuelDiesel,
	"hybrid":   FuelHybrid,
	"phev":     FuelHybrid,
	"electric": FuelElectric,
	"ev":       FuelElectric,
	"bev":      FuelElectric,
}

// ParseFuelType normalises a free-form fuel word. An empty value means gasoline.
func ParseFuelType(raw string) (FuelType, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return FuelGasoline, nil
	}
	if ft, ok := fuelAliases[key]; ok {
		return ft, nil
	}
	// Model answers such as "benzina/hybrid" or "2.0 diesel".
	for _, word := range strings.FieldsFunc(key, func(r rune) bool {
		return r == '/' || r == ' ' || r == '-' || r == ','
	}) {
		if ft, ok := fuelAliases[word]; ok {
			return ft, nil
		}
	}
	return "", apperr.Invalid("unknown fuel type %q", raw)
}

// Description is the set of attributes the cost engine needs from a vehicle.
type Description struct {
	Make              string   `json:"make"`
	Model             string   `json:"model"`
	ModelYear         int      `json:"modelYear"`
	EngineDescription string   `json:"engineDescription"`
	FuelType          FuelType `json:"fuelType"`
	CO2               int      `json:"co2"`
}

// Validate rejects descriptions the cost engine cannot price.
func (d Description) Validate() error {
	if d.CO2 < 0 {
		return apperr.Invalid("co2 must be >= 0, got %d", d.CO2)
	}
	if d.ModelYear < 1900 {
		return apperr.Invalid("modelYear %d is out of range", d.ModelYear)
	}
	if _, err := ParseFuelType(string(d.FuelType)); err != nil {
		return err
	}
	return nil
}

// Placeholder is the fixed description offered when the vision model output is unusable.
func Placeholder() Description {
	return Description{
		Make:              "Unknown",
		Model:             "Unknown",
		ModelYear:         2020,
		EngineDescription: "2.0L",
		FuelType:          FuelGasoline,
		CO2:               180,
	}
}
