// internal/delivery/telegram/bot.go
package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"course-payments-bot/internal/hints"
	"course-payments-bot/internal/infrastructure/persistence/postgres/models"
	"course-payments-bot/internal/invoice"
	"course-payments-bot/internal/product"
	"course-payments-bot/pkg/logger"
)

// Команда покупки: точное совпадение текста сообщения
const buyCommand = "Купить"

// ChatAPI - подмножество библиотечного клиента, нужное обработчику
type ChatAPI interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PaymentRecorder сохраняет завершённый платёж. nil допустим:
// без базы платежи только логируются.
type PaymentRecorder interface {
	Create(ctx context.Context, payment *models.CompletedPayment) error
}

// Bot обрабатывает обновления Telegram: команду покупки,
// pre-checkout подтверждение и фиксацию успешного платежа.
type Bot struct {
	api        ChatAPI
	product    *product.Product
	dispatcher *invoice.Dispatcher
	hints      *hints.Sender
	payments   PaymentRecorder
}

func NewBot(api ChatAPI, p *product.Product, d *invoice.Dispatcher, h *hints.Sender, payments PaymentRecorder) *Bot {
	return &Bot{
		api:        api,
		product:    p,
		dispatcher: d,
		hints:      h,
		payments:   payments,
	}
}

// Run читает канал обновлений до его закрытия или отмены контекста
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	logger.Info("🤖 Бот слушает обновления")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate обрабатывает одно обновление
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.PreCheckoutQuery != nil {
		b.confirmPreCheckout(update.PreCheckoutQuery)
		return
	}

	msg := update.Message
	if msg == nil {
		return
	}

	if msg.SuccessfulPayment != nil {
		b.recordPayment(ctx, msg)
		return
	}

	switch msg.Text {
	case "/start":
		b.sendWelcome(msg.Chat.ID)
	case buyCommand:
		b.sell(ctx, msg.Chat.ID)
	}
}

// confirmPreCheckout отвечает на pre-checkout запрос. Ответ обязателен
// в течение 10 секунд, иначе платформа отменяет платёж.
func (b *Bot) confirmPreCheckout(q *tgbotapi.PreCheckoutQuery) {
	_, err := b.api.Request(tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: q.ID,
		OK:                 true,
	})
	if err != nil {
		logger.Error("❌ Ошибка подтверждения pre-checkout %s: %v", q.ID, err)
		return
	}
	logger.Info("✅ Pre-checkout %s подтверждён", q.ID)
}

func (b *Bot) sendWelcome(chatID int64) {
	text := fmt.Sprintf(
		"👋 Здравствуйте! Здесь можно купить «%s».\n\n%s\n\nЦена: %.0f %s. Отправьте «%s», чтобы получить счёт.",
		b.product.Title, b.product.Description, b.product.PriceMajor, b.product.Currency, buyCommand,
	)
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Warn("⚠️ Приветствие не доставлено в чат %d: %v", chatID, err)
	}
}

// sell запускает отправку инвойса и best-effort подсказку.
// Подсказка уходит независимо от исхода отправки: deep-link остаётся
// запасным путём к боту и когда счёт выставить не удалось.
func (b *Bot) sell(ctx context.Context, chatID int64) {
	res := b.dispatcher.Dispatch(ctx, chatID)
	if !res.OK {
		logger.Error("❌ Инвойс не отправлен в чат %d: %s", chatID, res.Error)
		msg := tgbotapi.NewMessage(chatID, "😔 Не удалось выставить счёт. Попробуйте ещё раз чуть позже.")
		if _, err := b.api.Send(msg); err != nil {
			logger.Warn("⚠️ Сообщение об ошибке не доставлено в чат %d: %v", chatID, err)
		}
	}

	if b.hints != nil {
		b.hints.SendHint(chatID)
	}
}

// recordPayment фиксирует успешный платёж. Ошибка хранилища логируется
// и не мешает подтверждению для покупателя: платёж уже прошёл.
func (b *Bot) recordPayment(ctx context.Context, msg *tgbotapi.Message) {
	sp := msg.SuccessfulPayment
	logger.Info("💰 Успешный платёж в чате %d: %d %s, payload=%s",
		msg.Chat.ID, sp.TotalAmount, sp.Currency, sp.InvoicePayload)

	if b.payments != nil {
		payment := &models.CompletedPayment{
			ChatID:                  msg.Chat.ID,
			Currency:                sp.Currency,
			TotalAmount:             int64(sp.TotalAmount),
			InvoicePayload:          sp.InvoicePayload,
			TelegramPaymentChargeID: sp.TelegramPaymentChargeID,
			ProviderPaymentChargeID: sp.ProviderPaymentChargeID,
			Status:                  "completed",
		}

		saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := b.payments.Create(saveCtx, payment); err != nil {
			logger.Error("❌ Платёж не сохранён в базе: %v", err)
		}
	}

	confirmation := tgbotapi.NewMessage(msg.Chat.ID,
		fmt.Sprintf("🎉 Спасибо за покупку «%s»! Доступ к курсу придёт отдельным сообщением.", b.product.Title))
	if _, err := b.api.Send(confirmation); err != nil {
		logger.Warn("⚠️ Подтверждение оплаты не доставлено в чат %d: %v", msg.Chat.ID, err)
	}
}
