package main

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// number accepts a JSON number or a numeric string, as sent by HTML forms.
type number struct {
	value decimal.Decimal
	set   bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	n.value, n.set = d, true
	return nil
}

var (
	maxInt = decimal.NewFromInt(math.MaxInt32)
	minInt = decimal.NewFromInt(-math.MaxInt32)
)

// intOr returns the integer value, def when unset, or false for fractional
// or out-of-range input.
func (n number) intOr(def int) (int, bool) {
	if !n.set {
		return def, true
	}
	if !n.value.Equal(n.value.Truncate(0)) {
		return 0, false
	}
	if n.value.GreaterThan(maxInt) || n.value.LessThan(minInt) {
		return 0, false
	}
	return int(n.value.IntPart()), true
}
