// internal/pricing/validator.go
package pricing

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// ValidatePrices - строгая проверка построенного массива цен перед
// любым сетевым вызовом. Возвращает PriceValidationError со всеми
// нарушениями, либо nil.
func ValidatePrices(prices []PriceLine) error {
	if len(prices) == 0 {
		return &PriceValidationError{Violations: []Violation{
			{Index: -1, Reason: "must be a non-empty array"},
		}}
	}

	var violations []Violation
	for i, p := range prices {
		trimmed := strings.TrimSpace(p.Label)
		if trimmed == "" {
			violations = append(violations, Violation{Index: i, Field: "label", Reason: "must be a non-empty string"})
		} else if utf8.RuneCountInString(trimmed) > maxLabelRunes {
			violations = append(violations, Violation{Index: i, Field: "label", Reason: "length must be <= 32 characters"})
		}

		if p.Amount <= 0 {
			violations = append(violations, Violation{Index: i, Field: "amount", Reason: "must be > 0"})
		}
	}

	if len(violations) > 0 {
		return &PriceValidationError{Violations: violations}
	}
	return nil
}

// ValidateRawPrices проверяет сериализованный JSON массива цен после
// round-trip. Это последний шанс поймать порчу кодирования перед сетью:
// каждый элемент обязан быть объектом ровно с ключами label и amount -
// любой лишний ключ, который библиотека могла бы дописать при
// сериализации, Telegram отвергает.
func ValidateRawPrices(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var decoded []map[string]interface{}
	if err := dec.Decode(&decoded); err != nil {
		return &PriceValidationError{Violations: []Violation{
			{Index: -1, Reason: "must be a JSON array of objects: " + err.Error()},
		}}
	}
	if len(decoded) == 0 {
		return &PriceValidationError{Violations: []Violation{
			{Index: -1, Reason: "must be a non-empty array"},
		}}
	}

	var violations []Violation
	for i, rec := range decoded {
		for key := range rec {
			if key != "label" && key != "amount" {
				violations = append(violations, Violation{Index: i, Field: key, Reason: "is not an allowed key (only label, amount)"})
			}
		}

		labelRaw, ok := rec["label"]
		if !ok {
			violations = append(violations, Violation{Index: i, Field: "label", Reason: "is required"})
		} else if label, ok := labelRaw.(string); !ok {
			violations = append(violations, Violation{Index: i, Field: "label", Reason: "must be a string"})
		} else {
			trimmed := strings.TrimSpace(label)
			if trimmed == "" {
				violations = append(violations, Violation{Index: i, Field: "label", Reason: "must be a non-empty string"})
			} else if utf8.RuneCountInString(trimmed) > maxLabelRunes {
				violations = append(violations, Violation{Index: i, Field: "label", Reason: "length must be <= 32 characters"})
			}
		}

		amountRaw, ok := rec["amount"]
		if !ok {
			violations = append(violations, Violation{Index: i, Field: "amount", Reason: "is required"})
		} else if num, ok := amountRaw.(json.Number); !ok {
			violations = append(violations, Violation{Index: i, Field: "amount", Reason: "must be an integer"})
		} else if amount, err := num.Int64(); err != nil {
			violations = append(violations, Violation{Index: i, Field: "amount", Reason: "must be an integer"})
		} else if amount <= 0 {
			violations = append(violations, Violation{Index: i, Field: "amount", Reason: "must be > 0"})
		}
	}

	if len(violations) > 0 {
		return &PriceValidationError{Violations: violations}
	}
	return nil
}
