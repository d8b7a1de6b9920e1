package shop

import "github.com/shopspring/decimal"

func parsePrice(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Field: field, Reason: "not a valid amount"}
	}
	if d.IsNegative() {
		return decimal.Decimal{}, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return d, nil
}
