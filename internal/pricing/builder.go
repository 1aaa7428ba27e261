// internal/pricing/builder.go
package pricing

import (
	"encoding/json"
	"math"
	"strings"

	"course-payments-bot/internal/product"
)

// Telegram принимает label длиной 1..32 символа
const maxLabelRunes = 32

// PriceLine - одна позиция в разбивке цены инвойса.
// Amount в минимальных единицах валюты (копейки).
// Никакие другие поля не должны попадать в wire-формат.
type PriceLine struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// BuildPrices строит массив цен из продукта: ровно одна позиция,
// amount = round(цена в рублях * 100), label = заголовок продукта,
// обрезанный до 32 символов. Чистая функция, новый слайс на каждый вызов.
func BuildPrices(p *product.Product) ([]PriceLine, error) {
	if p == nil {
		return nil, &InvalidProductError{Reason: "product is nil"}
	}

	label := NormalizeLabel(p.Title)
	if label == "" {
		return nil, &InvalidProductError{Reason: "title is empty after trim"}
	}

	amount, err := ToMinorUnits(p.PriceMajor)
	if err != nil {
		return nil, err
	}

	return []PriceLine{{Label: label, Amount: amount}}, nil
}

// ToMinorUnits переводит цену из основных единиц в минимальные (копейки).
// Результат обязан быть положительным целым.
func ToMinorUnits(priceMajor float64) (int64, error) {
	if math.IsNaN(priceMajor) || math.IsInf(priceMajor, 0) {
		return 0, &InvalidProductError{Reason: "price must be a finite number"}
	}

	cents := math.Round(priceMajor * 100)
	if cents <= 0 {
		return 0, &InvalidProductError{Reason: "price in minor units must be a positive integer"}
	}
	if cents > math.MaxInt64 {
		return 0, &InvalidProductError{Reason: "price in minor units overflows int64"}
	}

	return int64(cents), nil
}

// NormalizeLabel обрезает пробелы и ограничивает длину 32 кодовыми точками
func NormalizeLabel(label string) string {
	s := strings.TrimSpace(label)
	runes := []rune(s)
	if len(runes) > maxLabelRunes {
		return string(runes[:maxLabelRunes])
	}
	return s
}

// StringifyPrices сериализует массив цен в JSON для raw-отправки и аудита
func StringifyPrices(prices []PriceLine) ([]byte, error) {
	return json.Marshal(prices)
}
