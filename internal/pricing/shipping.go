package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingMethod selects how the vehicle travels from Dubai to Rotterdam.
type ShippingMethod string

const (
	ShippingRoRo        ShippingMethod = "roro"
	ShippingContainer20 ShippingMethod = "container_20ft"
	ShippingContainer40 ShippingMethod = "container_40ft"
)

// ParseShippingMethod maps a selector to a method. Unknown selectors ship RoRo.
func ParseShippingMethod(raw string) ShippingMethod {
	switch ShippingMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case ShippingContainer20, "container20ft", "container_20", "20ft":
		return ShippingContainer20
	case ShippingContainer40, "container40ft", "container_40", "40ft":
		return ShippingContainer40
	default:
		return ShippingRoRo
	}
}

// Dimensions of the shipped vehicle in metres and kilograms.
type Dimensions struct {
	LengthM  float64 `json:"lengthM"`
	WidthM   float64 `json:"widthM"`
	HeightM  float64 `json:"heightM"`
	WeightKg float64 `json:"weightKg"`
}

// DefaultDimensions approximate a mid-size SUV.
func DefaultDimensions() Dimensions {
	return Dimensions{LengthM: 4.5, WidthM: 1.8, HeightM: 1.5, WeightKg: 1500}
}

// withDefaults fills every unset (non-positive) measurement.
func (d *Dimensions) withDefaults() Dimensions {
	def := DefaultDimensions()
	if d == nil {
		return def
	}
	out := *d
	if out.LengthM <= 0 {
		out.LengthM = def.LengthM
	}
	if out.WidthM <= 0 {
		out.WidthM = def.WidthM
	}
	if out.HeightM <= 0 {
		out.HeightM = def.HeightM
	}
	if out.WeightKg <= 0 {
		out.WeightKg = def.WeightKg
	}
	return out
}

// Surcharge adds Amount to the base rate when a measurement exceeds Over.
type Surcharge struct {
	Over   float64
	Amount decimal.Decimal
}

// RateCard is the fee structure of one shipping method.
type RateCard struct {
	Label           string
	Base            decimal.Decimal
	Loading         decimal.Decimal
	Unloading       decimal.Decimal
	Securing        decimal.Decimal
	ContainerRental decimal.NullDecimal
	Insurance       decimal.Decimal
	// Only RoRo prices deck space by size.
	LengthSurcharge *Surcharge
	HeightSurcharge *Surcharge
}

// ShippingBreakdown itemises a shipping quote. Total is the sum of every present line.
type ShippingBreakdown struct {
	Method          ShippingMethod
	MethodLabel     string
	BaseShipping    decimal.Decimal
	LoadingFee      decimal.Decimal
	UnloadingFee    decimal.Decimal
	SecuringFee     decimal.Decimal
	ContainerRental decimal.NullDecimal
	Insurance       decimal.Decimal
	Total           decimal.Decimal
}

// DefaultRateCards returns the Dubai → Rotterdam rate cards.
func DefaultRateCards() map[ShippingMethod]RateCard {
	return map[ShippingMethod]RateCard{
		ShippingRoRo: {
			Label:           "RoRo (Roll-on/Roll-off)",
			Base:            eur(800),
			Loading:         eur(150),
			Unloading:       eur(150),
			Securing:        eur(50),
			Insurance:       eur(100),
			LengthSurcharge: &Surcharge{Over: 5, Amount: eur(200)},
			HeightSurcharge: &Surcharge{Over: 2, Amount: eur(150)},
		},
		ShippingContainer20: {
			Label:           "Container 20ft",
			Base:            eur(1500),
			Loading:         eur(200),
			Unloading:       eur(200),
			Securing:        eur(100),
			ContainerRental: decimal.NewNullDecimal(eur(150)),
			Insurance:       eur(150),
		},
		ShippingContainer40: {
			Label:           "Container 40ft",
			Base:            eur(2400),
			Loading:         eur(250),
			Unloading:       eur(250),
			Securing:        eur(150),
			ContainerRental: decimal.NewNullDecimal(eur(200)),
			Insurance:       eur(150),
		},
	}
}

// Quote prices a shipment on this rate card.
func (c RateCard) Quote(method ShippingMethod, dims *Dimensions) ShippingBreakdown {
	d := dims.withDefaults()

	base := c.Base
	if c.LengthSurcharge != nil && d.LengthM > c.LengthSurcharge.Over {
		base = base.Add(c.LengthSurcharge.Amount)
	}
	if c.HeightSurcharge != nil && d.HeightM > c.HeightSurcharge.Over {
		base = base.Add(c.HeightSurcharge.Amount)
	}

	b := ShippingBreakdown{
		Method:          method,
		MethodLabel:     c.Label,
		BaseShipping:    money(base),
		LoadingFee:      money(c.Loading),
		UnloadingFee:    money(c.Unloading),
		SecuringFee:     money(c.Securing),
		ContainerRental: c.ContainerRental,
		Insurance:       money(c.Insurance),
	}
	total := sum(b.BaseShipping, b.LoadingFee, b.UnloadingFee, b.SecuringFee, b.Insurance)
	if b.ContainerRental.Valid {
		b.ContainerRental.Decimal = money(b.ContainerRental.Decimal)
		total = total.Add(b.ContainerRental.Decimal)
	}
	b.Total = total
	return b
}

// Shipping quotes a method with the default rate cards.
func Shipping(method ShippingMethod, dims *Dimensions) ShippingBreakdown {
	return DefaultSchedule().Shipping(method, dims)
}
