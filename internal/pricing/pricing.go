// Package pricing computes the landed cost of importing a vehicle bought in Dubai
// through Rotterdam under the free zone, standard, and registration-tax-exempt routes.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/importcalc/internal/apperr"
	"github.com/Simplici0/importcalc/internal/vehicle"
)

// ScenarioName identifies one of the customs routes being compared.
type ScenarioName string

const (
	ScenarioFreeZone ScenarioName = "free_zone"
	ScenarioStandard ScenarioName = "standard"
	ScenarioNoBPM    ScenarioName = "no_bpm"
)

// Label is the display name of a scenario.
func (n ScenarioName) Label() string {
	switch n {
	case ScenarioFreeZone:
		return "FREE ZONE"
	case ScenarioStandard:
		return "STANDARD"
	case ScenarioNoBPM:
		return "NO BPM"
	default:
		return string(n)
	}
}

// Input represents the vehicle-level inputs of one landed cost calculation.
type Input struct {
	Vehicle       vehicle.Description
	PurchasePrice decimal.Decimal
	Shipping      ShippingMethod
	Dimensions    *Dimensions
	ReferenceYear int
}

// Scenario is the cost breakdown of a single route. Fields a route does not
// charge are zero. Total is the sum of every other amount.
type Scenario struct {
	Name            ScenarioName
	VehiclePrice    decimal.Decimal
	Shipping        decimal.Decimal
	PortFees        decimal.Decimal
	FreeZoneEntry   decimal.Decimal
	Handling        decimal.Decimal
	ImportDuty      decimal.Decimal
	VAT             decimal.Decimal
	RegistrationTax decimal.Decimal
	Agent           decimal.Decimal
	DocsInsurance   decimal.Decimal
	Total           decimal.Decimal
}

// Line is a labelled amount for display.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

// Lines lists the charged amounts of the scenario in display order.
func (s Scenario) Lines() []Line {
	lines := []Line{
		{"Vehicle", s.VehiclePrice},
		{"Shipping", s.Shipping},
		{"Port fees", s.PortFees},
	}
	switch s.Name {
	case ScenarioFreeZone:
		lines = append(lines,
			Line{"Free zone entry", s.FreeZoneEntry},
			Line{"Handling", s.Handling},
		)
	default:
		lines = append(lines,
			Line{"Import duty", s.ImportDuty},
			Line{"VAT", s.VAT},
			Line{"BPM", s.RegistrationTax},
		)
	}
	return append(lines,
		Line{"Agent", s.Agent},
		Line{"Docs & insurance", s.DocsInsurance},
	)
}

func (s *Scenario) total() {
	s.Total = sum(s.VehiclePrice, s.Shipping, s.PortFees, s.FreeZoneEntry, s.Handling,
		s.ImportDuty, s.VAT, s.RegistrationTax, s.Agent, s.DocsInsurance)
}

// Result groups the three scenarios with the shipping quote and the recommendation.
type Result struct {
	FreeZone        Scenario
	Standard        Scenario
	NoBPM           Scenario
	ShippingDetails ShippingBreakdown
	Recommended     ScenarioName
	Costliest       ScenarioName
	Savings         decimal.Decimal
}

// Scenarios returns the scenarios in comparison order.
func (r Result) Scenarios() []Scenario {
	return []Scenario{r.FreeZone, r.Standard, r.NoBPM}
}

// Calculate computes the three import scenarios for one vehicle under the given schedule.
func Calculate(in Input, sched Schedule) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	price := money(in.PurchasePrice)
	shipping := sched.Shipping(in.Shipping, in.Dimensions)
	portFees := money(sched.PortFees)

	freeZone := Scenario{
		Name:          ScenarioFreeZone,
		VehiclePrice:  price,
		Shipping:      shipping.Total,
		PortFees:      portFees,
		FreeZoneEntry: money(sched.FreeZone.Entry),
		Handling:      money(sched.FreeZone.Handling),
		Agent:         money(sched.FreeZone.Agent),
		DocsInsurance: money(sched.FreeZone.DocsInsurance),
	}
	freeZone.total()

	duty := money(price.Mul(sched.ImportDutyRate))
	// VAT is levied on the customs value: price, freight and duty. Port fees are not part of it.
	vat := money(sum(price, shipping.Total, duty).Mul(sched.VATRate))
	bpm := sched.RegistrationTax.Compute(in.Vehicle.CO2, in.Vehicle.ModelYear, in.Vehicle.FuelType, in.ReferenceYear)
	standard := Scenario{
		Name:            ScenarioStandard,
		VehiclePrice:    price,
		Shipping:        shipping.Total,
		PortFees:        portFees,
		ImportDuty:      duty,
		VAT:             vat,
		RegistrationTax: bpm,
		Agent:           money(sched.Clearance.Agent),
		DocsInsurance:   money(sched.Clearance.DocsInsurance),
	}
	standard.total()

	noBPM := standard
	noBPM.Name = ScenarioNoBPM
	noBPM.RegistrationTax = decimal.Zero
	noBPM.total()

	res := Result{
		FreeZone:        freeZone,
		Standard:        standard,
		NoBPM:           noBPM,
		ShippingDetails: shipping,
	}
	res.recommend()
	return res, nil
}

// recommend picks the cheapest route; ties go to the earlier scenario in comparison order.
func (r *Result) recommend() {
	scenarios := r.Scenarios()
	best, worst := scenarios[0], scenarios[0]
	for _, s := range scenarios[1:] {
		if s.Total.LessThan(best.Total) {
			best = s
		}
		if s.Total.GreaterThan(worst.Total) {
			worst = s
		}
	}
	r.Recommended = best.Name
	r.Costliest = worst.Name
	r.Savings = worst.Total.Sub(best.Total)
}

func validate(in Input) error {
	if !in.PurchasePrice.IsPositive() {
		return apperr.Invalid("vehicle price must be greater than 0, got %s", in.PurchasePrice.String())
	}
	if in.Vehicle.CO2 < 0 {
		return apperr.Invalid("co2 must be >= 0, got %d", in.Vehicle.CO2)
	}
	if in.ReferenceYear <= 0 {
		return apperr.Invalid("reference year is required")
	}
	return nil
}
