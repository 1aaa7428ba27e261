// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"course-payments-bot/internal/product"

	"github.com/joho/godotenv"
)

// Config - структура конфигурации приложения
type Config struct {
	// Telegram
	TelegramBotToken string
	ProviderToken    string
	TelegramAPIHost  string // Хост Telegram API (переопределяется в тестах)

	// Продукт (ровно один на деплоймент)
	ProductID             string
	ProductTitle          string
	ProductDescription    string
	ProductCurrency       string
	ProductPriceMajor     float64
	ProductPayload        string
	ProductStartParameter string

	// HTTP Server
	HttpPort    string
	HttpEnabled bool

	// Persistence (опционально)
	DatabaseURL string

	// Audit trail (опционально)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AuditTrailCap int

	// Logging
	LogLevel string
	LogFile  string
	Debug    bool

	// Timeouts
	FallbackTimeout time.Duration
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
	}

	config := &Config{
		// Telegram
		TelegramBotToken: getEnvString("TELEGRAM_BOT_TOKEN", ""),
		ProviderToken:    getEnvString("PROVIDER_TOKEN", ""),
		TelegramAPIHost:  getEnvString("TELEGRAM_API_HOST", "https://api.telegram.org"),

		// Продукт
		ProductID:             getEnvString("PRODUCT_ID", "arabic_course_001"),
		ProductTitle:          getEnvString("PRODUCT_TITLE", "Арабский курс"),
		ProductDescription:    getEnvString("PRODUCT_DESCRIPTION", "Интенсивный онлайн-курс арабского языка для начинающих."),
		ProductCurrency:       getEnvString("PRODUCT_CURRENCY", "RUB"),
		ProductPriceMajor:     getEnvFloat("PRODUCT_PRICE", 5500),
		ProductPayload:        getEnvString("PRODUCT_PAYLOAD", "arabic_course_001"),
		ProductStartParameter: getEnvString("PRODUCT_START_PARAMETER", "buy_arabic_course"),

		// HTTP Server
		HttpPort:    getEnvString("HTTP_PORT", "3001"),
		HttpEnabled: getEnvBool("HTTP_ENABLED", true),

		// Persistence
		DatabaseURL: getEnvString("DATABASE_URL", ""),

		// Audit trail
		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		AuditTrailCap: getEnvInt("AUDIT_TRAIL_CAP", 100),

		// Logging
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		LogFile:  getEnvString("LOG_FILE", "logs/bot.log"),
		Debug:    getEnvBool("DEBUG", false),

		// Timeouts
		FallbackTimeout: time.Duration(getEnvInt("FALLBACK_TIMEOUT", 15)) * time.Second,
	}

	return config, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.ProviderToken == "" {
		return fmt.Errorf("PROVIDER_TOKEN is required")
	}
	if c.ProductPriceMajor <= 0 {
		return fmt.Errorf("product price must be positive")
	}
	if c.FallbackTimeout < time.Second {
		return fmt.Errorf("fallback timeout must be at least 1 second")
	}
	// Продукт проверяется на старте, а не при каждой отправке
	if err := c.Product().Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return nil
}

// Product собирает продукт из конфигурации
func (c *Config) Product() *product.Product {
	return &product.Product{
		ID:             c.ProductID,
		Title:          c.ProductTitle,
		Description:    c.ProductDescription,
		Currency:       c.ProductCurrency,
		PriceMajor:     c.ProductPriceMajor,
		Payload:        c.ProductPayload,
		StartParameter: c.ProductStartParameter,
		ProviderToken:  c.ProviderToken,
	}
}

// Вспомогательные функции для парсинга переменных окружения
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
