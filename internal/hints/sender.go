// internal/hints/sender.go
package hints

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"course-payments-bot/internal/identity"
	"course-payments-bot/pkg/logger"
)

// MessageAPI - отправка сообщения через библиотечный клиент
type MessageAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender шлёт подсказку с deep-link'ами после успешной отправки
// инвойса. Строго best-effort: любая неудача логируется и глотается,
// на результат отправки инвойса подсказка не влияет.
type Sender struct {
	api            MessageAPI
	holder         *identity.Holder
	startParameter string
}

func NewSender(api MessageAPI, holder *identity.Holder, startParameter string) *Sender {
	return &Sender{
		api:            api,
		holder:         holder,
		startParameter: startParameter,
	}
}

// SendHint отправляет подсказку в чат. Текст не предполагает, что счёт
// дошёл: подсказка уходит при любом исходе отправки. При разрешённой
// идентичности - оба HTTPS-варианта deep-link'а кнопками (схему tg://
// платформа в URL-кнопках не принимает), иначе общий текст без ссылок.
func (s *Sender) SendHint(chatID int64) {
	if chatID <= 0 {
		return
	}

	links := identity.BuildDeepLinks(s.holder.Get(), s.startParameter)

	var msg tgbotapi.MessageConfig
	if links.Web == "" {
		msg = tgbotapi.NewMessage(chatID, "💡 Если счёт не пришёл или не открывается, обновите Telegram до последней версии.")
	} else {
		msg = tgbotapi.NewMessage(chatID, "💡 Прямые ссылки на бота на случай проблем со счётом:")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("Открыть в Telegram", links.Web),
				tgbotapi.NewInlineKeyboardButtonURL("Версия для ПК", links.Desktop),
			),
		)
	}

	if _, err := s.api.Send(msg); err != nil {
		logger.Warn("⚠️ Подсказка с deep-link не доставлена в чат %d: %v", chatID, err)
	}
}
