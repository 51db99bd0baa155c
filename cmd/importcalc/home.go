package main

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/importcalc/internal/currency"
	"github.com/Simplici0/importcalc/internal/logging"
	"github.com/Simplici0/importcalc/internal/pricing"
)

type rateRow struct {
	Pair string
	Rate float64
}

type option struct {
	Value string
	Label string
}

type homeViewData struct {
	ReferenceYear   int
	Rates           []rateRow
	UpdatedAt       string
	Source          currency.Source
	AIEnabled       bool
	ShippingMethods []option
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.rates.Snapshot(r.Context())
	rates := snap.Rates()

	data := homeViewData{
		ReferenceYear: s.referenceYear(),
		Rates: []rateRow{
			{"EUR → AED", rates.EURToAED},
			{"EUR → USD", rates.EURToUSD},
			{"AED → EUR", rates.AEDToEUR},
			{"USD → EUR", rates.USDToEUR},
			{"AED → USD", rates.AEDToUSD},
			{"USD → AED", rates.USDToAED},
		},
		UpdatedAt: snap.UpdatedAt,
		Source:    snap.Source,
		AIEnabled: s.analyzer != nil,
	}
	for _, m := range []pricing.ShippingMethod{pricing.ShippingRoRo, pricing.ShippingContainer20, pricing.ShippingContainer40} {
		data.ShippingMethods = append(data.ShippingMethods, option{Value: string(m), Label: s.schedule.RateCards[m].Label})
	}

	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logging.FromContext(r.Context()).Error("render home", zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
