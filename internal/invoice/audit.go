// internal/invoice/audit.go
package invoice

import (
	"context"
	"time"
)

// AuditEntry - запись об одной попытке отправки инвойса.
// Форма payload - доминирующая причина отказов Telegram, поэтому
// каждая попытка фиксируется с точным сериализованным payload
// и замаскированным токеном.
type AuditEntry struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"` // primary | fallback
	ChatID      int64     `json:"chat_id"`
	MaskedToken string    `json:"masked_token"`
	Payload     string    `json:"payload"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuditSink принимает записи аудита. Реализация не должна влиять
// на результат отправки: ошибки записи глотаются внутри реализации.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}
