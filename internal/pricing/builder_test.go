package pricing

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-payments-bot/internal/product"
)

func validProduct() *product.Product {
	return &product.Product{
		ID:             "arabic_course_001",
		Title:          "Арабский курс",
		Description:    "Интенсивный онлайн-курс арабского языка для начинающих.",
		Currency:       "RUB",
		PriceMajor:     5500,
		Payload:        "arabic_course_001",
		StartParameter: "buy_arabic_course",
		ProviderToken:  "381764678:TEST:140649",
	}
}

func TestBuildPrices(t *testing.T) {
	prices, err := BuildPrices(validProduct())
	require.NoError(t, err)
	require.Len(t, prices, 1)

	assert.Equal(t, "Арабский курс", prices[0].Label)
	assert.Equal(t, int64(550000), prices[0].Amount)
}

func TestBuildPricesRoundTripLaw(t *testing.T) {
	// Любой валидный продукт даёт массив, который проходит обе валидации
	products := []*product.Product{
		validProduct(),
		{Title: "X", PriceMajor: 0.01},
		{Title: strings.Repeat("я", 100), PriceMajor: 99999.99},
		{Title: "  padded  ", PriceMajor: 1},
	}

	for _, p := range products {
		prices, err := BuildPrices(p)
		require.NoError(t, err, "title=%q price=%v", p.Title, p.PriceMajor)

		assert.NoError(t, ValidatePrices(prices))

		raw, err := StringifyPrices(prices)
		require.NoError(t, err)
		assert.NoError(t, ValidateRawPrices(raw))
	}
}

func TestBuildPricesAmountRounding(t *testing.T) {
	cases := []struct {
		price  float64
		amount int64
	}{
		{5500, 550000},
		{0.01, 1},
		{0.125, 13}, // половина округляется от нуля: 12.5 -> 13
		{1.005, 100}, // float64: 1.005*100 = 100.4999..., округление вниз
		{249.99, 24999},
	}

	for _, tc := range cases {
		p := validProduct()
		p.PriceMajor = tc.price

		prices, err := BuildPrices(p)
		require.NoError(t, err)
		assert.Equal(t, tc.amount, prices[0].Amount, "price=%v", tc.price)
	}
}

func TestBuildPricesLabelTruncation(t *testing.T) {
	p := validProduct()
	p.Title = strings.Repeat("ж", 40)

	prices, err := BuildPrices(p)
	require.NoError(t, err)

	assert.Equal(t, 32, utf8.RuneCountInString(prices[0].Label))
	assert.Equal(t, strings.Repeat("ж", 32), prices[0].Label)
}

func TestBuildPricesInvalidProduct(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*product.Product)
	}{
		{"empty title", func(p *product.Product) { p.Title = "" }},
		{"whitespace title", func(p *product.Product) { p.Title = "   " }},
		{"zero price", func(p *product.Product) { p.PriceMajor = 0 }},
		{"negative price", func(p *product.Product) { p.PriceMajor = -5 }},
		{"NaN price", func(p *product.Product) { p.PriceMajor = math.NaN() }},
		{"Inf price", func(p *product.Product) { p.PriceMajor = math.Inf(1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProduct()
			tc.mutate(p)

			_, err := BuildPrices(p)
			var invalidErr *InvalidProductError
			require.ErrorAs(t, err, &invalidErr)
		})
	}

	_, err := BuildPrices(nil)
	var invalidErr *InvalidProductError
	require.ErrorAs(t, err, &invalidErr)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "abc", NormalizeLabel("  abc  "))
	assert.Equal(t, "", NormalizeLabel("   "))
	assert.Equal(t, strings.Repeat("a", 32), NormalizeLabel(strings.Repeat("a", 33)))
}
