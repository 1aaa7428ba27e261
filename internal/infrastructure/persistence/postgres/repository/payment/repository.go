// internal/infrastructure/persistence/postgres/repository/payment/repository.go
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"course-payments-bot/internal/infrastructure/persistence/postgres/models"
)

// Repository интерфейс хранилища завершённых платежей
type Repository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, payment *models.CompletedPayment) error
	GetByChargeID(ctx context.Context, chargeID string) (*models.CompletedPayment, error)
	ListRecent(ctx context.Context, limit int) ([]*models.CompletedPayment, error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

// NewRepository создает новый репозиторий завершённых платежей
func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db}
}

// EnsureSchema создает таблицу платежей, если её ещё нет
func (r *repositoryImpl) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS completed_payments (
		id BIGSERIAL PRIMARY KEY,
		chat_id BIGINT NOT NULL,
		currency TEXT NOT NULL,
		total_amount BIGINT NOT NULL,
		invoice_payload TEXT NOT NULL,
		telegram_payment_charge_id TEXT NOT NULL UNIQUE,
		provider_payment_charge_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания схемы платежей: %w", err)
	}
	return nil
}

// Create сохраняет завершённый платёж. Повторная доставка того же
// successful_payment не создает дубликат.
func (r *repositoryImpl) Create(ctx context.Context, payment *models.CompletedPayment) error {
	query := `
	INSERT INTO completed_payments (
		chat_id, currency, total_amount, invoice_payload,
		telegram_payment_charge_id, provider_payment_charge_id, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (telegram_payment_charge_id) DO NOTHING
	RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		payment.ChatID,
		payment.Currency,
		payment.TotalAmount,
		payment.InvoicePayload,
		payment.TelegramPaymentChargeID,
		payment.ProviderPaymentChargeID,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		// Конфликт по charge_id: платёж уже записан ранее
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка сохранения платежа: %w", err)
	}

	return nil
}

// GetByChargeID получает платёж по telegram_payment_charge_id
func (r *repositoryImpl) GetByChargeID(ctx context.Context, chargeID string) (*models.CompletedPayment, error) {
	query := `
	SELECT * FROM completed_payments WHERE telegram_payment_charge_id = $1
	`

	var payment models.CompletedPayment
	if err := r.db.GetContext(ctx, &payment, query, chargeID); err != nil {
		return nil, fmt.Errorf("ошибка получения платежа по charge_id %s: %w", chargeID, err)
	}

	return &payment, nil
}

// ListRecent получает последние платежи
func (r *repositoryImpl) ListRecent(ctx context.Context, limit int) ([]*models.CompletedPayment, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT * FROM completed_payments
	ORDER BY created_at DESC
	LIMIT $1
	`

	var payments []*models.CompletedPayment
	if err := r.db.SelectContext(ctx, &payments, query, limit); err != nil {
		return nil, fmt.Errorf("ошибка получения последних платежей: %w", err)
	}

	return payments, nil
}
