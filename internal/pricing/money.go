package pricing

import "github.com/shopspring/decimal"

// Amounts are euros rounded to cents.
func money(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func eur(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
