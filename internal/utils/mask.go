// internal/utils/mask.go
package utils

import "strings"

// MaskToken маскирует секретный токен для логов и диагностики.
// Видны первые 6 и последние 4 символа; токены короче 10 символов
// маскируются полностью.
func MaskToken(token string) string {
	if len(token) < 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + strings.Repeat("*", len(token)-10) + token[len(token)-4:]
}
