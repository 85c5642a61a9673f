// Package pricing derives the customer-facing price of a product from its
// base price and optional discount fields.
//
// Resolve is pure: the storefront listing, the admin views and the checkout
// all call it and must agree to the cent.
package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input carries raw price fields. Each one may be a decimal, a Go number, a
// numeric string or nil; anything unparseable is treated as missing.
type Input struct {
	Price              any
	DiscountPrice      any
	DiscountPercentage any
}

type Result struct {
	HasDiscount        bool             `json:"has_discount"`
	DisplayPrice       decimal.Decimal  `json:"display_price"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	DiscountPercentage decimal.Decimal  `json:"discount_percentage"`
}

func Resolve(in Input) Result {
	price, ok := Parse(in.Price)
	if !ok {
		price = decimal.Zero
	}

	candidate, explicit := Parse(in.DiscountPrice)
	if explicit && candidate.IsZero() {
		explicit = false
	}

	pct, hasPct := Parse(in.DiscountPercentage)

	if !explicit && hasPct && price.IsPositive() && pct.IsPositive() && pct.LessThan(hundred) {
		candidate = price.Mul(hundred.Sub(pct)).Div(hundred).Round(2)
		explicit = true
	}

	if explicit && price.IsPositive() && candidate.IsPositive() && candidate.LessThan(price) {
		orig := price
		return Result{
			HasDiscount:        true,
			DisplayPrice:       candidate,
			OriginalPrice:      &orig,
			DiscountPercentage: price.Sub(candidate).Div(price).Mul(hundred).Round(0),
		}
	}

	res := Result{DisplayPrice: price, DiscountPercentage: decimal.Zero}
	if hasPct {
		// показываем сохранённое значение как есть, на hasDiscount не влияет
		res.DiscountPercentage = pct
	}
	return res
}

// ResolveProduct resolves a stored product row.
func ResolveProduct(p models.Product) Result {
	return Resolve(Input{
		Price:              p.Price,
		DiscountPrice:      p.DiscountPrice,
		DiscountPercentage: p.DiscountPercentage,
	})
}

// Parse normalizes a decimal field that may arrive as a string or a number.
func Parse(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case decimal.NullDecimal:
		return x.Decimal, x.Valid
	case string:
		return parseString(x)
	case *string:
		if x == nil {
			return decimal.Zero, false
		}
		return parseString(*x)
	case json.Number:
		return parseString(x.String())
	case float64:
		return fromFloat(x)
	case *float64:
		if x == nil {
			return decimal.Zero, false
		}
		return fromFloat(*x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case *int:
		if x == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(int64(*x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case *int64:
		if x == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(*x), true
	case uint:
		return parseString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		return decimal.NewFromInt(int64(x)), true
	case uint16:
		return decimal.NewFromInt(int64(x)), true
	case uint32:
		return decimal.NewFromInt(int64(x)), true
	case uint64:
		return parseString(strconv.FormatUint(x, 10))
	default:
		return decimal.Zero, false
	}
}

func parseString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
