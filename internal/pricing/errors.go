// internal/pricing/errors.go
package pricing

import (
	"fmt"
	"strings"
)

// InvalidProductError - ошибка конфигурации продукта, фатальна для вызова
type InvalidProductError struct {
	Reason string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("invalid product: %s", e.Reason)
}

// Violation - одно нарушение в массиве цен
type Violation struct {
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// PriceValidationError - ошибка валидации массива цен.
// Несёт все найденные нарушения, никогда не исправляется молча.
type PriceValidationError struct {
	Violations []Violation
}

func (e *PriceValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "prices validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			parts = append(parts, fmt.Sprintf("prices[%d].%s %s", v.Index, v.Field, v.Reason))
		} else {
			parts = append(parts, fmt.Sprintf("prices[%d] %s", v.Index, v.Reason))
		}
	}
	return strings.Join(parts, "; ")
}
