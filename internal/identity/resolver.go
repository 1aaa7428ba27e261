// internal/identity/resolver.go
package identity

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"course-payments-bot/pkg/logger"
)

// SelfAPI - вызов getMe у Telegram
type SelfAPI interface {
	GetMe() (tgbotapi.User, error)
}

// Resolver разрешает идентичность бота при старте процесса.
// Одна попытка; при неудаче ровно один повтор через RetryDelay,
// после чего разрешение прекращается - best-effort, не гарантия.
type Resolver struct {
	api    SelfAPI
	holder *Holder

	RetryDelay time.Duration
}

func NewResolver(api SelfAPI, holder *Holder) *Resolver {
	return &Resolver{
		api:        api,
		holder:     holder,
		RetryDelay: 1500 * time.Millisecond,
	}
}

// Start выполняет первую попытку getMe и при неудаче планирует
// единственный отложенный повтор. Повтор неотменяем.
func (r *Resolver) Start() {
	if r.resolve() {
		return
	}

	logger.Warn("⚠️ getMe не удался, повтор через %s", r.RetryDelay)
	time.AfterFunc(r.RetryDelay, func() {
		if !r.resolve() {
			logger.Warn("⚠️ getMe не удался повторно, идентичность бота останется неразрешённой")
		}
	})
}

func (r *Resolver) resolve() bool {
	me, err := r.api.GetMe()
	if err != nil {
		logger.Error("❌ getMe error: %v", err)
		return false
	}
	if me.UserName == "" {
		logger.Error("❌ getMe вернул пустой username")
		return false
	}

	r.holder.set(me.UserName)
	logger.Info("🤖 Идентичность бота разрешена: @%s", me.UserName)
	return true
}
