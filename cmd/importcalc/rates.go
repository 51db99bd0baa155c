package main

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/importcalc/internal/apperr"
	"github.com/Simplici0/importcalc/internal/currency"
)

type ratesResponse struct {
	Rates     map[string]float64 `json:"rates"`
	Timestamp string             `json:"timestamp"`
	Source    currency.Source    `json:"source"`
}

func ratesView(snap currency.Snapshot) ratesResponse {
	r := snap.Rates()
	return ratesResponse{
		Rates: map[string]float64{
			"EUR_TO_AED": r.EURToAED,
			"EUR_TO_USD": r.EURToUSD,
			"AED_TO_EUR": r.AEDToEUR,
			"USD_TO_EUR": r.USDToEUR,
			"AED_TO_USD": r.AEDToUSD,
			"USD_TO_AED": r.USDToAED,
		},
		Timestamp: snap.UpdatedAt,
		Source:    snap.Source,
	}
}

func (s *server) handleExchangeRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ratesView(s.rates.Snapshot(r.Context())))
}

type convertResponse struct {
	Amount    float64           `json:"amount"`
	From      currency.Currency `json:"from"`
	To        currency.Currency `json:"to"`
	Rate      float64           `json:"rate"`
	Result    float64           `json:"result"`
	Timestamp string            `json:"timestamp"`
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil {
		writeError(w, r, apperr.Invalid("amount must be a number"))
		return
	}
	if amount.IsNegative() {
		writeError(w, r, apperr.Invalid("amount must not be negative"))
		return
	}
	from, err := currency.ParseCurrency(q.Get("from"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := currency.ParseCurrency(q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap := s.rates.Snapshot(r.Context())
	rate, err := snap.Multiplier(from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := snap.Convert(amount, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		Amount:    amount.InexactFloat64(),
		From:      from,
		To:        to,
		Rate:      rate,
		Result:    result.InexactFloat64(),
		Timestamp: snap.UpdatedAt,
	})
}
