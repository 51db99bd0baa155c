package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Simplici0/importcalc/internal/currency"
	"github.com/Simplici0/importcalc/internal/llm"
	"github.com/Simplici0/importcalc/internal/pricing"
	"github.com/Simplici0/importcalc/internal/vehicle"
)

type stubRates struct {
	snap currency.Snapshot
	err  error
}

func (s stubRates) Fetch(context.Context) (currency.Snapshot, error) {
	return s.snap, s.err
}

type stubModel struct {
	answer string
	err    error
}

func (m stubModel) Complete(context.Context, llm.Request) (string, error) {
	return m.answer, m.err
}

var liveRates = currency.Snapshot{
	EURToAED:  4.0,
	EURToUSD:  1.1,
	UpdatedAt: "Sat, 18 Oct 2026 00:02:31 +0000",
	Source:    currency.SourceLive,
}

func newTestServer(t *testing.T, provider currency.Provider, model llm.Client) *server {
	t.Helper()
	var analyzer *vehicle.Analyzer
	if model != nil {
		analyzer = vehicle.NewAnalyzer(model)
	}
	srv, err := newServer(pricing.DefaultSchedule(), currency.NewCache(provider), analyzer, nil, 2025)
	if err != nil {
		t.Fatalf("newServer returned error: %v", err)
	}
	srv.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return srv
}

func do(t *testing.T, srv *server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rr.Body.String(), err)
	}
}

func TestCalculateCostsDieselExample(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	rr := do(t, srv, http.MethodPost, "/api/calculate-costs",
		`{"vehiclePrice": 20000, "co2": 150, "modelYear": 2021, "fuelType": "diesel", "shippingMethod": "roro"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp costResponse
	decodeBody(t, rr, &resp)

	if resp.FreeZone.Total != 22650 {
		t.Fatalf("expected free zone total 22650, got %.2f", resp.FreeZone.Total)
	}
	if resp.Standard.RegistrationTax == nil || *resp.Standard.RegistrationTax != 2472 {
		t.Fatalf("expected BPM 2472, got %v", resp.Standard.RegistrationTax)
	}
	if resp.Standard.VAT == nil || *resp.Standard.VAT != 4882.5 {
		t.Fatalf("expected VAT 4882.5, got %v", resp.Standard.VAT)
	}
	if resp.Standard.Total != 31754.5 {
		t.Fatalf("expected standard total 31754.5, got %.2f", resp.Standard.Total)
	}
	if resp.NoBPM.Total != 29282.5 {
		t.Fatalf("expected no-BPM total 29282.5, got %.2f", resp.NoBPM.Total)
	}
	if resp.ShippingDetails.Total != 1250 || resp.ShippingDetails.ContainerRental != nil {
		t.Fatalf("unexpected shipping details: %+v", resp.ShippingDetails)
	}
	if resp.Recommendation != pricing.ScenarioFreeZone || resp.SavingsAmount != 9104.5 {
		t.Fatalf("unexpected recommendation %q savings %.2f", resp.Recommendation, resp.SavingsAmount)
	}
	if !strings.Contains(resp.RecommendationText, "FREE ZONE saves €9,105 vs STANDARD") {
		t.Fatalf("unexpected recommendation text %q", resp.RecommendationText)
	}
	if resp.FreeZone.ImportDuty != nil || resp.FreeZone.FreeZoneEntry == nil {
		t.Fatalf("free zone scenario carries the wrong fee fields: %+v", resp.FreeZone)
	}
	if resp.PriceCurrency != currency.EUR || resp.ExchangeRate != 1 || resp.ReferenceYear != 2025 {
		t.Fatalf("unexpected currency echo: %+v", resp)
	}
}

func TestCalculateCostsAcceptsFormStrings(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	rr := do(t, srv, http.MethodPost, "/api/calculate-costs",
		`{"vehiclePrice": "20000", "co2": "150", "modelYear": "2021", "fuelType": "motorina", "shippingMethod": "container_20ft"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp costResponse
	decodeBody(t, rr, &resp)
	if resp.ShippingDetails.Total != 2300 || resp.ShippingDetails.ContainerRental == nil {
		t.Fatalf("unexpected container shipping: %+v", resp.ShippingDetails)
	}
}

func TestCalculateCostsConvertsPurchaseCurrency(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	rr := do(t, srv, http.MethodPost, "/api/calculate-costs",
		`{"vehiclePrice": 80000, "priceCurrency": "aed", "co2": 150, "modelYear": 2021, "fuelType": "diesel"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp costResponse
	decodeBody(t, rr, &resp)
	if resp.FreeZone.VehiclePrice != 20000 {
		t.Fatalf("expected vehicle price 20000 EUR, got %.2f", resp.FreeZone.VehiclePrice)
	}
	if resp.PurchasePrice != 80000 || resp.PriceCurrency != currency.AED || resp.ExchangeRate != 0.25 {
		t.Fatalf("unexpected purchase echo: price %.2f %s rate %v", resp.PurchasePrice, resp.PriceCurrency, resp.ExchangeRate)
	}
}

func TestCalculateCostsRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	bodies := map[string]string{
		"missing price":  `{"co2": 150}`,
		"zero price":     `{"vehiclePrice": 0}`,
		"negative price": `{"vehiclePrice": -5}`,
		"text price":     `{"vehiclePrice": "cheap"}`,
		"negative co2":   `{"vehiclePrice": 1000, "co2": -1}`,
		"fractional co2": `{"vehiclePrice": 1000, "co2": 150.5}`,
		"unknown fuel":   `{"vehiclePrice": 1000, "fuelType": "steam"}`,
		"bad currency":   `{"vehiclePrice": 1000, "priceCurrency": "GBP"}`,
		"broken json":    `{"vehiclePrice": `,
		"ancient year":   `{"vehiclePrice": 1000, "modelYear": 1800}`,
		"huge co2":       `{"vehiclePrice": 1000, "co2": 18446744073709551716}`,
		"huge year":      `{"vehiclePrice": 1000, "modelYear": 18446744073709553640}`,
		"tiny co2":       `{"vehiclePrice": 1000, "co2": "-18446744073709551616"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/calculate-costs", body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			var payload map[string]any
			decodeBody(t, rr, &payload)
			if payload["error"] == "" || payload["kind"] != "invalid_input" {
				t.Fatalf("unexpected error payload: %v", payload)
			}
		})
	}
}

var gifImage = base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00\x01\x00"))

func TestAnalyzeVehicle(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, stubModel{
		answer: "```json\n{\"make\":\"Jeep\",\"model\":\"Wrangler\",\"year\":\"2018-2020\",\"fuel\":\"benzina\",\"co2\":\"243 g/km\",\"confidence\":\"70%\"}\n```",
	})

	rr := do(t, srv, http.MethodPost, "/api/analyze-vehicle", `{"image": "data:image/gif;base64,`+gifImage+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	decodeBody(t, rr, &payload)
	if payload["make"] != "Jeep" || payload["modelYear"] != float64(2018) || payload["co2"] != float64(243) {
		t.Fatalf("unexpected analysis: %v", payload)
	}
	if payload["fuelType"] != "gasoline" || payload["placeholder"] != false {
		t.Fatalf("unexpected analysis: %v", payload)
	}
}

func TestAnalyzeVehicleMalformedAnswer(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, stubModel{answer: "I can't tell from this photo."})

	rr := do(t, srv, http.MethodPost, "/api/analyze-vehicle", `{"images": ["`+gifImage+`"]}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	decodeBody(t, rr, &payload)
	if payload["raw"] != "I can't tell from this photo." {
		t.Fatalf("expected raw model output in error, got %v", payload)
	}

	rr = do(t, srv, http.MethodPost, "/api/analyze-vehicle", `{"images": ["`+gifImage+`"], "allowPlaceholder": true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 with placeholder, got %d", rr.Code)
	}
	decodeBody(t, rr, &payload)
	if payload["placeholder"] != true || payload["make"] != "Unknown" || payload["co2"] != float64(180) {
		t.Fatalf("unexpected placeholder: %v", payload)
	}
}

func TestAnalyzeVehicleErrors(t *testing.T) {
	failing := newTestServer(t, stubRates{snap: liveRates}, stubModel{err: errors.New("timeout")})
	if rr := do(t, failing, http.MethodPost, "/api/analyze-vehicle", `{"image": "`+gifImage+`"}`); rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on model failure, got %d", rr.Code)
	}
	if rr := do(t, failing, http.MethodPost, "/api/analyze-vehicle", `{}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without images, got %d", rr.Code)
	}

	unconfigured := newTestServer(t, stubRates{snap: liveRates}, nil)
	if rr := do(t, unconfigured, http.MethodPost, "/api/analyze-vehicle", `{"image": "`+gifImage+`"}`); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without credentials, got %d", rr.Code)
	}
}

func TestClarifyVehicle(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	rr := do(t, srv, http.MethodPost, "/api/clarify-vehicle",
		`{"vehicle": {"make": "Jeep", "model": "Wrangler", "modelYear": 2019, "fuelType": "gasoline", "co2": 243, "confidence": 70},
		  "answers": {"trim": "Rubicon", "modelYear": "2020", "engine": ""}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got vehicle.Analysis
	decodeBody(t, rr, &got)
	if got.Trim != "Rubicon" || got.ModelYear != 2020 || got.Confidence != 90 {
		t.Fatalf("unexpected clarified vehicle: %+v", got)
	}

	rr = do(t, srv, http.MethodPost, "/api/clarify-vehicle", `{"vehicle": {}, "answers": {"colour": "red"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rr.Code)
	}
}

func TestEstimateMarketPrice(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, stubModel{answer: `{"min": 38000, "max": 42000, "notes": "popular trim"}`})

	rr := do(t, srv, http.MethodPost, "/api/estimate-market-price", `{"make": "Jeep", "model": "Wrangler", "modelYear": 2020}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp marketResponse
	decodeBody(t, rr, &resp)
	if resp.Estimate == nil || resp.Estimate.Min != 38000 || resp.Estimate.Currency != "EUR" {
		t.Fatalf("unexpected estimate: %+v", resp.Estimate)
	}

	vague := newTestServer(t, stubRates{snap: liveRates}, stubModel{answer: "Hard to say."})
	rr = do(t, vague, http.MethodPost, "/api/estimate-market-price", `{"make": "Jeep"}`)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"estimate":null}` {
		t.Fatalf("expected null estimate, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestExchangeRates(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	rr := do(t, srv, http.MethodGet, "/api/exchange-rates", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp ratesResponse
	decodeBody(t, rr, &resp)
	if len(resp.Rates) != 6 || resp.Rates["AED_TO_EUR"] != 0.25 || resp.Timestamp != liveRates.UpdatedAt {
		t.Fatalf("unexpected rates: %+v", resp)
	}
}

func TestExchangeRatesFallback(t *testing.T) {
	srv := newTestServer(t, stubRates{err: errors.New("dns failure")}, nil)

	rr := do(t, srv, http.MethodGet, "/api/exchange-rates", "")
	var resp ratesResponse
	decodeBody(t, rr, &resp)
	if resp.Timestamp != "fallback" || resp.Source != currency.SourceFallback {
		t.Fatalf("expected fallback rates, got %+v", resp)
	}
	if resp.Rates["EUR_TO_AED"] != 3.97 {
		t.Fatalf("unexpected fallback EUR_TO_AED %v", resp.Rates["EUR_TO_AED"])
	}
}

func TestConvert(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	rr := do(t, srv, http.MethodGet, "/api/convert?amount=100&from=EUR&to=AED", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp convertResponse
	decodeBody(t, rr, &resp)
	if resp.Result != 400 || resp.Rate != 4 {
		t.Fatalf("unexpected conversion: %+v", resp)
	}

	for _, target := range []string{
		"/api/convert?amount=abc&from=EUR&to=AED",
		"/api/convert?amount=-1&from=EUR&to=AED",
		"/api/convert?amount=1&from=EUR&to=JPY",
	} {
		if rr := do(t, srv, http.MethodGet, target, ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}

func TestHomeRendersRates(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)

	rr := do(t, srv, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html content type, got %q", rr.Header().Get("Content-Type"))
	}
	body := rr.Body.String()
	for _, expected := range []string{"Exchange rates", "4.0000", "RoRo (Roll-on/Roll-off)", "Photo analysis is disabled"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, stubRates{snap: liveRates}, nil)
	if rr := do(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
