package pricing_test

import (
	"encoding/json"
	"math"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s got %s", want, got)
}

func TestResolve_ExplicitDiscount(t *testing.T) {
	res := pricing.Resolve(pricing.Input{Price: 100, DiscountPrice: 80})

	assert.True(t, res.HasDiscount)
	assertDec(t, "80", res.DisplayPrice)
	require.NotNil(t, res.OriginalPrice)
	assertDec(t, "100", *res.OriginalPrice)
	assertDec(t, "20", res.DiscountPercentage)
}

func TestResolve_PercentageOnly(t *testing.T) {
	res := pricing.Resolve(pricing.Input{Price: 50, DiscountPercentage: 10})

	assert.True(t, res.HasDiscount)
	assertDec(t, "45", res.DisplayPrice)
	require.NotNil(t, res.OriginalPrice)
	assertDec(t, "50", *res.OriginalPrice)
	assertDec(t, "10", res.DiscountPercentage)
}

func TestResolve_NoDiscountFields(t *testing.T) {
	for _, price := range []any{0, 1, "19.99", 250.5, dec("1000")} {
		res := pricing.Resolve(pricing.Input{Price: price})
		p, _ := pricing.Parse(price)

		assert.False(t, res.HasDiscount, "price %v", price)
		assertDec(t, p.String(), res.DisplayPrice)
		assert.Nil(t, res.OriginalPrice)
		assert.True(t, res.DiscountPercentage.IsZero())
	}
}

func TestResolve_DiscountNotBelowPriceIgnored(t *testing.T) {
	cases := []pricing.Input{
		{Price: 100, DiscountPrice: 100},
		{Price: 100, DiscountPrice: 150},
		{Price: "100", DiscountPrice: "100.00"},
		// явная, но неверная цена со скидкой отключает и процент
		{Price: 100, DiscountPrice: 120, DiscountPercentage: 10},
	}
	for _, in := range cases {
		res := pricing.Resolve(in)
		assert.False(t, res.HasDiscount, "%+v", in)
		assertDec(t, "100", res.DisplayPrice)
		assert.Nil(t, res.OriginalPrice)
	}
}

func TestResolve_ExplicitDiscountWinsOverPercentage(t *testing.T) {
	res := pricing.Resolve(pricing.Input{Price: 200, DiscountPrice: 150, DiscountPercentage: 50})

	assert.True(t, res.HasDiscount)
	assertDec(t, "150", res.DisplayPrice)
	assertDec(t, "25", res.DiscountPercentage)
}

func TestResolve_ZeroOrEmptyDiscountPriceIsAbsent(t *testing.T) {
	for _, dp := range []any{0, "", "  ", "0", "abc", nil, (*decimal.Decimal)(nil)} {
		res := pricing.Resolve(pricing.Input{Price: 40, DiscountPrice: dp, DiscountPercentage: 25})
		assert.True(t, res.HasDiscount, "discount_price %#v", dp)
		assertDec(t, "30", res.DisplayPrice)
	}
}

func TestResolve_PercentageOutOfRange(t *testing.T) {
	for _, pct := range []any{0, 100, 150, -5} {
		res := pricing.Resolve(pricing.Input{Price: 80, DiscountPercentage: pct})
		p, _ := pricing.Parse(pct)

		assert.False(t, res.HasDiscount, "pct %v", pct)
		assertDec(t, "80", res.DisplayPrice)
		// хранимый процент возвращается как есть
		assertDec(t, p.String(), res.DiscountPercentage)
	}
}

func TestResolve_ZeroPriceNeverDiscounted(t *testing.T) {
	res := pricing.Resolve(pricing.Input{Price: 0, DiscountPrice: 5, DiscountPercentage: 10})
	assert.False(t, res.HasDiscount)
	assert.True(t, res.DisplayPrice.IsZero())
}

func TestResolve_RoundsToCents(t *testing.T) {
	// 19.99 * 0.85 = 16.9915 -> 16.99
	res := pricing.Resolve(pricing.Input{Price: "19.99", DiscountPercentage: "15"})
	assertDec(t, "16.99", res.DisplayPrice)
	assertDec(t, "15", res.DiscountPercentage)

	// 10.05 * 0.5 = 5.025 -> 5.03 (half up)
	res = pricing.Resolve(pricing.Input{Price: "10.05", DiscountPercentage: 50})
	assertDec(t, "5.03", res.DisplayPrice)
}

func TestResolve_StringAndNumberAgree(t *testing.T) {
	a := pricing.Resolve(pricing.Input{Price: "99.90", DiscountPrice: "79.92"})
	b := pricing.Resolve(pricing.Input{Price: 99.9, DiscountPrice: json.Number("79.92")})

	assert.Equal(t, a.HasDiscount, b.HasDiscount)
	assert.True(t, a.DisplayPrice.Equal(b.DisplayPrice))
	assert.True(t, a.DiscountPercentage.Equal(b.DiscountPercentage))
}

func TestResolve_Deterministic(t *testing.T) {
	in := pricing.Input{Price: "12.34", DiscountPercentage: "33"}
	first := pricing.Resolve(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, pricing.Resolve(in))
	}
}

func TestResolveProduct(t *testing.T) {
	dp := dec("80")
	res := pricing.ResolveProduct(models.Product{Price: dec("100"), DiscountPrice: &dp})
	assert.True(t, res.HasDiscount)
	assertDec(t, "80", res.DisplayPrice)

	res = pricing.ResolveProduct(models.Product{Price: dec("100")})
	assert.False(t, res.HasDiscount)
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{"12.5", "12.5", true},
		{" 7 ", "7", true},
		{"", "0", false},
		{"n/a", "0", false},
		{3, "3", true},
		{uint(4), "4", true},
		{int64(5), "5", true},
		{2.25, "2.25", true},
		{math.NaN(), "0", false},
		{math.Inf(1), "0", false},
		{json.Number("1.10"), "1.1", true},
		{true, "0", false},
	}
	for _, c := range cases {
		got, ok := pricing.Parse(c.in)
		assert.Equal(t, c.ok, ok, "%#v", c.in)
		assertDec(t, c.want, got)
	}
}
