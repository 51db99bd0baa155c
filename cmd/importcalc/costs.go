package main

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/importcalc/internal/apperr"
	"github.com/Simplici0/importcalc/internal/currency"
	"github.com/Simplici0/importcalc/internal/pricing"
	"github.com/Simplici0/importcalc/internal/vehicle"
)

type costRequest struct {
	VehiclePrice   number              `json:"vehiclePrice"`
	PriceCurrency  string              `json:"priceCurrency"`
	CO2            number              `json:"co2"`
	ModelYear      number              `json:"modelYear"`
	FuelType       string              `json:"fuelType"`
	ShippingMethod string              `json:"shippingMethod"`
	Dimensions     *pricing.Dimensions `json:"dimensions"`
}

type lineJSON struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type scenarioJSON struct {
	Name            pricing.ScenarioName `json:"name"`
	Label           string               `json:"label"`
	VehiclePrice    float64              `json:"vehiclePrice"`
	Shipping        float64              `json:"shipping"`
	PortFees        float64              `json:"portFees"`
	FreeZoneEntry   *float64             `json:"freeZoneEntry,omitempty"`
	Handling        *float64             `json:"handling,omitempty"`
	ImportDuty      *float64             `json:"importDuty,omitempty"`
	VAT             *float64             `json:"vat,omitempty"`
	RegistrationTax *float64             `json:"bpm,omitempty"`
	Agent           float64              `json:"agent"`
	DocsInsurance   float64              `json:"docsInsurance"`
	Total           float64              `json:"total"`
	Lines           []lineJSON           `json:"lines"`
}

type shippingJSON struct {
	Method          pricing.ShippingMethod `json:"method"`
	MethodLabel     string                 `json:"methodLabel"`
	BaseShipping    float64                `json:"baseShipping"`
	LoadingFee      float64                `json:"loadingFee"`
	UnloadingFee    float64                `json:"unloadingFee"`
	SecuringFee     float64                `json:"securingFee"`
	ContainerRental *float64               `json:"containerRental,omitempty"`
	Insurance       float64                `json:"insurance"`
	Total           float64                `json:"total"`
}

type costResponse struct {
	FreeZone           scenarioJSON         `json:"freeZone"`
	Standard           scenarioJSON         `json:"standard"`
	NoBPM              scenarioJSON         `json:"noBpm"`
	ShippingDetails    shippingJSON         `json:"shippingDetails"`
	Recommendation     pricing.ScenarioName `json:"recommendation"`
	RecommendationText string               `json:"recommendationText"`
	SavingsAmount      float64              `json:"savingsAmount"`
	PurchasePrice      float64              `json:"purchasePrice"`
	PriceCurrency      currency.Currency    `json:"priceCurrency"`
	ExchangeRate       float64              `json:"exchangeRate"`
	ReferenceYear      int                  `json:"referenceYear"`
}

func (s *server) handleCalculateCosts(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.calculateCosts(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) calculateCosts(ctx context.Context, req costRequest) (costResponse, error) {
	if !req.VehiclePrice.set {
		return costResponse{}, apperr.Invalid("vehiclePrice is required")
	}
	co2, ok := req.CO2.intOr(vehicle.DefaultCO2)
	if !ok {
		return costResponse{}, apperr.Invalid("co2 must be a whole number in range")
	}
	year, ok := req.ModelYear.intOr(vehicle.DefaultModelYear)
	if !ok {
		return costResponse{}, apperr.Invalid("modelYear must be a whole number in range")
	}
	fuel, err := vehicle.ParseFuelType(req.FuelType)
	if err != nil {
		return costResponse{}, err
	}
	cur, err := currency.ParseCurrency(req.PriceCurrency)
	if err != nil {
		return costResponse{}, err
	}

	price, rate := req.VehiclePrice.value, 1.0
	if cur != currency.EUR {
		snap := s.rates.Snapshot(ctx)
		if rate, err = snap.Multiplier(cur, currency.EUR); err != nil {
			return costResponse{}, err
		}
		if price, err = snap.Convert(price, cur, currency.EUR); err != nil {
			return costResponse{}, err
		}
	}

	desc := vehicle.Description{ModelYear: year, FuelType: fuel, CO2: co2}
	if err := desc.Validate(); err != nil {
		return costResponse{}, err
	}

	refYear := s.referenceYear()
	res, err := pricing.Calculate(pricing.Input{
		Vehicle:       desc,
		PurchasePrice: price,
		Shipping:      pricing.ParseShippingMethod(req.ShippingMethod),
		Dimensions:    req.Dimensions,
		ReferenceYear: refYear,
	}, s.schedule)
	if err != nil {
		return costResponse{}, err
	}

	return costResponse{
		FreeZone:           scenarioView(res.FreeZone),
		Standard:           scenarioView(res.Standard),
		NoBPM:              scenarioView(res.NoBPM),
		ShippingDetails:    shippingView(res.ShippingDetails),
		Recommendation:     res.Recommended,
		RecommendationText: res.RecommendationText(),
		SavingsAmount:      res.Savings.InexactFloat64(),
		PurchasePrice:      req.VehiclePrice.value.InexactFloat64(),
		PriceCurrency:      cur,
		ExchangeRate:       rate,
		ReferenceYear:      refYear,
	}, nil
}

func scenarioView(sc pricing.Scenario) scenarioJSON {
	v := scenarioJSON{
		Name:          sc.Name,
		Label:         sc.Name.Label(),
		VehiclePrice:  sc.VehiclePrice.InexactFloat64(),
		Shipping:      sc.Shipping.InexactFloat64(),
		PortFees:      sc.PortFees.InexactFloat64(),
		Agent:         sc.Agent.InexactFloat64(),
		DocsInsurance: sc.DocsInsurance.InexactFloat64(),
		Total:         sc.Total.InexactFloat64(),
	}
	if sc.Name == pricing.ScenarioFreeZone {
		v.FreeZoneEntry = amountPtr(sc.FreeZoneEntry)
		v.Handling = amountPtr(sc.Handling)
	} else {
		v.ImportDuty = amountPtr(sc.ImportDuty)
		v.VAT = amountPtr(sc.VAT)
		v.RegistrationTax = amountPtr(sc.RegistrationTax)
	}
	for _, l := range sc.Lines() {
		v.Lines = append(v.Lines, lineJSON{Label: l.Label, Amount: l.Amount.InexactFloat64()})
	}
	return v
}

func shippingView(b pricing.ShippingBreakdown) shippingJSON {
	v := shippingJSON{
		Method:       b.Method,
		MethodLabel:  b.MethodLabel,
		BaseShipping: b.BaseShipping.InexactFloat64(),
		LoadingFee:   b.LoadingFee.InexactFloat64(),
		UnloadingFee: b.UnloadingFee.InexactFloat64(),
		SecuringFee:  b.SecuringFee.InexactFloat64(),
		Insurance:    b.Insurance.InexactFloat64(),
		Total:        b.Total.InexactFloat64(),
	}
	if b.ContainerRental.Valid {
		v.ContainerRental = amountPtr(b.ContainerRental.Decimal)
	}
	return v
}

func amountPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
