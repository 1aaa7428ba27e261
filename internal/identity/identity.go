// internal/identity/identity.go
package identity

import "sync"

// BotIdentity - публичная идентичность бота. Явная сумма
// resolved/unresolved вместо nullable-поля.
type BotIdentity struct {
	Username string `json:"username"`
	Resolved bool   `json:"resolved"`
}

// IdentityUnresolvedError возвращается диагностикой, когда идентичность
// бота так и не была получена. Позволяет отличить "ещё недоступно"
// от "пусто".
type IdentityUnresolvedError struct{}

func (e *IdentityUnresolvedError) Error() string {
	return "bot identity is not resolved yet"
}

// Holder - процессный кэш идентичности бота. Единственное разделяемое
// изменяемое состояние в ядре: пишет только Resolver, читают все.
type Holder struct {
	mu sync.RWMutex
	id BotIdentity
}

func NewHolder() *Holder {
	return &Holder{}
}

// Get возвращает текущую идентичность (возможно, ещё не разрешённую)
func (h *Holder) Get() BotIdentity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

func (h *Holder) set(username string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = BotIdentity{Username: username, Resolved: true}
}
