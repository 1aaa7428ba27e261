package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:ABC-DEF")
	t.Setenv("PROVIDER_TOKEN", "381764678:TEST:140649")

	cfg, err := LoadConfig("testdata/nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "arabic_course_001", cfg.ProductID)
	assert.Equal(t, "Арабский курс", cfg.ProductTitle)
	assert.Equal(t, "RUB", cfg.ProductCurrency)
	assert.Equal(t, float64(5500), cfg.ProductPriceMajor)
	assert.Equal(t, "buy_arabic_course", cfg.ProductStartParameter)
	assert.Equal(t, "3001", cfg.HttpPort)
	assert.True(t, cfg.HttpEnabled)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIHost)
	assert.Equal(t, 15*time.Second, cfg.FallbackTimeout)
	assert.Equal(t, 100, cfg.AuditTrailCap)

	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresTokens(t *testing.T) {
	cfg := &Config{
		ProviderToken:     "381764678:TEST:140649",
		ProductID:         "arabic_course_001",
		ProductTitle:      "Арабский курс",
		ProductCurrency:   "RUB",
		ProductPayload:    "arabic_course_001",
		ProductPriceMajor: 5500,
		FallbackTimeout:   15 * time.Second,
	}
	assert.Error(t, cfg.Validate(), "bot token is required")

	cfg.TelegramBotToken = "123456:ABC-DEF"
	cfg.ProviderToken = ""
	assert.Error(t, cfg.Validate(), "provider token is required")

	cfg.ProviderToken = "381764678:TEST:140649"
	cfg.ProductPriceMajor = 0
	assert.Error(t, cfg.Validate(), "price must be positive")

	cfg.ProductPriceMajor = 5500
	cfg.FallbackTimeout = 100 * time.Millisecond
	assert.Error(t, cfg.Validate(), "fallback timeout too small")

	cfg.FallbackTimeout = 15 * time.Second
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsMalformedProduct(t *testing.T) {
	// Пустой payload ловится на старте, а не при отправке
	cfg := &Config{
		TelegramBotToken:  "123456:ABC-DEF",
		ProviderToken:     "381764678:TEST:140649",
		ProductID:         "arabic_course_001",
		ProductTitle:      "Арабский курс",
		ProductCurrency:   "RUB",
		ProductPayload:    "",
		ProductPriceMajor: 5500,
		FallbackTimeout:   15 * time.Second,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid product")
}

func TestProductCarriesProviderToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:ABC-DEF")
	t.Setenv("PROVIDER_TOKEN", "381764678:TEST:140649")
	t.Setenv("PRODUCT_PRICE", "249.99")

	cfg, err := LoadConfig("testdata/nonexistent.env")
	require.NoError(t, err)

	p := cfg.Product()
	assert.Equal(t, "381764678:TEST:140649", p.ProviderToken)
	assert.Equal(t, 249.99, p.PriceMajor)
	require.NoError(t, p.Validate())
}
