// internal/product/product.go
package product

import (
	"fmt"
	"strings"
)

// Product - единственный продаваемый продукт деплоймента.
// Загружается из конфигурации при старте и далее неизменяем.
type Product struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Currency       string  `json:"currency"`
	PriceMajor     float64 `json:"price"` // Цена в основных единицах валюты (рубли)
	Payload        string  `json:"payload"`
	StartParameter string  `json:"start_parameter"`
	ProviderToken  string  `json:"-"` // Токен провайдера, никогда не сериализуется наружу
}

// Validate проверяет обязательные поля продукта
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("product title is required")
	}
	if strings.TrimSpace(p.Currency) == "" {
		return fmt.Errorf("product currency is required")
	}
	if strings.TrimSpace(p.Payload) == "" {
		return fmt.Errorf("product payload is required")
	}
	if strings.TrimSpace(p.ProviderToken) == "" {
		return fmt.Errorf("provider token is required")
	}
	return nil
}

// Summary возвращает публичное представление продукта для API
// (без payload и токена провайдера).
type Summary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Currency    string  `json:"currency"`
	Price       float64 `json:"price"`
}

func (p *Product) Summary() Summary {
	return Summary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Currency:    p.Currency,
		Price:       p.PriceMajor,
	}
}
