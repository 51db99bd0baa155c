package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatEUR renders an amount with grouped thousands, e.g. "€12,345.50".
func FormatEUR(v decimal.Decimal) string {
	return printer.Sprintf("€%.2f", v.InexactFloat64())
}

// RecommendationText describes the cheapest route and how much it saves over the costliest one.
func (r Result) RecommendationText() string {
	hint := "(for registration and sale in NL)"
	if r.Recommended == ScenarioFreeZone {
		hint = "(ideal for re-export within the EU)"
	}
	if r.Savings.IsZero() {
		return printer.Sprintf("%s: all routes cost the same %s", r.Recommended.Label(), hint)
	}
	return printer.Sprintf("%s saves €%.0f vs %s %s",
		r.Recommended.Label(), r.Savings.Round(0).InexactFloat64(), r.Costliest.Label(), hint)
}
