// internal/infrastructure/persistence/postgres/database/service.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"course-payments-bot/pkg/logger"
)

// Service управляет подключением к PostgreSQL. Хранилище опционально:
// без DATABASE_URL бот работает, но завершённые платежи не сохраняются.
type Service struct {
	databaseURL string
	db          *sqlx.DB
}

func NewService(databaseURL string) *Service {
	return &Service{databaseURL: databaseURL}
}

// Start открывает соединение и проверяет его ping'ом
func (s *Service) Start(ctx context.Context) error {
	logger.Info("🔄 Подключение к PostgreSQL...")

	db, err := sqlx.Open("postgres", s.databaseURL)
	if err != nil {
		return fmt.Errorf("ошибка открытия соединения с базой: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("ошибка ping базы данных: %w", err)
	}

	s.db = db
	logger.Info("✅ Подключение к PostgreSQL установлено")
	return nil
}

// Stop закрывает соединение
func (s *Service) Stop() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия соединения с базой: %w", err)
	}
	s.db = nil
	return nil
}

// GetDB возвращает соединение с базой данных
func (s *Service) GetDB() *sqlx.DB {
	return s.db
}

// HealthCheck проверяет доступность базы
func (s *Service) HealthCheck(ctx context.Context) bool {
	if s.db == nil {
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		logger.Warn("⚠️ Health check базы данных не прошёл: %v", err)
		return false
	}
	return true
}
