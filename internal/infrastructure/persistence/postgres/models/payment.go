// internal/infrastructure/persistence/postgres/models/payment.go
package models

import "time"

// CompletedPayment - завершённый платёж, подтверждённый Telegram.
// Записывается после получения successful_payment, источник истины -
// платформа, мы только фиксируем факт.
type CompletedPayment struct {
	ID                      int64     `db:"id" json:"id"`
	ChatID                  int64     `db:"chat_id" json:"chatId"`
	Currency                string    `db:"currency" json:"currency"`
	TotalAmount             int64     `db:"total_amount" json:"totalAmount"`
	InvoicePayload          string    `db:"invoice_payload" json:"invoicePayload"`
	TelegramPaymentChargeID string    `db:"telegram_payment_charge_id" json:"telegramPaymentChargeId"`
	ProviderPaymentChargeID string    `db:"provider_payment_charge_id" json:"providerPaymentChargeId"`
	Status                  string    `db:"status" json:"status"`
	CreatedAt               time.Time `db:"created_at" json:"createdAt"`
}
