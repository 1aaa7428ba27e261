// internal/infrastructure/audit/redis_trail.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"course-payments-bot/internal/invoice"
	"course-payments-bot/pkg/logger"
)

const trailKey = "invoice:audit:trail"

// RedisTrail хранит последние попытки отправки инвойсов в Redis-списке
// фиксированной длины. Реализация AuditSink: любая ошибка записи
// глотается и никогда не влияет на результат отправки.
type RedisTrail struct {
	client *redis.Client
	cap    int64
}

func NewRedisTrail(client *redis.Client, cap int) *RedisTrail {
	if cap <= 0 {
		cap = 100
	}
	return &RedisTrail{client: client, cap: int64(cap)}
}

// Connect создает клиент Redis и проверяет соединение
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	return client, nil
}

// Record добавляет запись в начало списка и обрезает его до cap
func (t *RedisTrail) Record(ctx context.Context, entry invoice.AuditEntry) {
	if t.client == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("⚠️ Ошибка маршалинга записи аудита: %v", err)
		return
	}

	pipe := t.client.Pipeline()
	pipe.LPush(ctx, trailKey, data)
	pipe.LTrim(ctx, trailKey, 0, t.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("⚠️ Ошибка записи аудита в Redis: %v", err)
	}
}

// ListRecent возвращает последние записи аудита, новые первыми
func (t *RedisTrail) ListRecent(ctx context.Context, limit int) ([]invoice.AuditEntry, error) {
	if t.client == nil {
		return nil, nil
	}
	if limit <= 0 || int64(limit) > t.cap {
		limit = int(t.cap)
	}

	raw, err := t.client.LRange(ctx, trailKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения аудита из Redis: %w", err)
	}

	entries := make([]invoice.AuditEntry, 0, len(raw))
	for _, item := range raw {
		var entry invoice.AuditEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			logger.Warn("⚠️ Повреждённая запись аудита пропущена: %v", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
