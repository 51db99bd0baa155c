package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/importcalc/internal/vehicle"
)

// TaxBand charges PerGram for every g/km of CO2 up to UpTo. UpTo == 0 means unbounded.
type TaxBand struct {
	UpTo    int
	PerGram decimal.Decimal
}

// TaxRules parameterise the Dutch BPM-style registration tax.
type TaxRules struct {
	Base                   decimal.Decimal
	FreeThreshold          int
	Bands                  []TaxBand
	DieselSurchargePerGram decimal.Decimal
	DepreciationPerYear    decimal.Decimal
	ExemptAge              int
}

// DefaultTaxRules returns the BPM table used by the calculator.
func DefaultTaxRules() TaxRules {
	return TaxRules{
		Base:          eur(400),
		FreeThreshold: 82,
		Bands: []TaxBand{
			{UpTo: 140, PerGram: eur(80)},
			{UpTo: 180, PerGram: eur(120)},
			{UpTo: 0, PerGram: eur(180)},
		},
		DieselSurchargePerGram: eur(90),
		DepreciationPerYear:    decimal.RequireFromString("0.20"),
		ExemptAge:              5,
	}
}

// RegistrationTax computes the registration tax with the default rules.
func RegistrationTax(co2, modelYear int, fuel vehicle.FuelType, referenceYear int) decimal.Decimal {
	return DefaultTaxRules().Compute(co2, modelYear, fuel, referenceYear)
}

// Compute returns the net registration tax. Inputs are clamped: negative CO2 counts
// as zero and a model year after the reference year counts as a new vehicle.
// Vehicles ExemptAge years or older pay nothing.
func (r TaxRules) Compute(co2, modelYear int, fuel vehicle.FuelType, referenceYear int) decimal.Decimal {
	age := referenceYear - modelYear
	if age < 0 {
		age = 0
	}
	if age >= r.ExemptAge {
		return decimal.Zero
	}
	if co2 < 0 {
		co2 = 0
	}

	gross := r.Base
	lower := r.FreeThreshold
	for _, band := range r.Bands {
		if co2 <= lower {
			break
		}
		upper := co2
		if band.UpTo > 0 && band.UpTo < co2 {
			upper = band.UpTo
		}
		gross = gross.Add(band.PerGram.Mul(decimal.NewFromInt(int64(upper - lower))))
		if band.UpTo == 0 {
			break
		}
		lower = band.UpTo
	}

	if fuel == vehicle.FuelDiesel && co2 > r.FreeThreshold {
		excess := decimal.NewFromInt(int64(co2 - r.FreeThreshold))
		gross = gross.Add(r.DieselSurchargePerGram.Mul(excess))
	}

	depreciation := decimal.Min(r.DepreciationPerYear.Mul(decimal.NewFromInt(int64(age))), decimal.NewFromInt(1))
	return money(gross.Mul(decimal.NewFromInt(1).Sub(depreciation)))
}
