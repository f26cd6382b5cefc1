package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ProductRecord is the product catalog's JSON object as decoded with
// UseNumber. Only "price" is interpreted.
type ProductRecord map[string]any

// UnitPrice extracts the numeric "price" field. A missing, null or
// non-numeric price is a ErrPricingContractViolation.
func (p ProductRecord) UnitPrice() (decimal.Decimal, error) {
	raw, ok := p["price"]
	if !ok || raw == nil {
		return decimal.Zero, fmt.Errorf("price missing: %w", ErrPricingContractViolation)
	}

	switch v := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("price %q: %w", v.String(), ErrPricingContractViolation)
		}
		return d, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("price %v: %w", v, ErrPricingContractViolation)
		}
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("price has type %T: %w", raw, ErrPricingContractViolation)
	}
}
