// cmd/bot/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"course-payments-bot/internal/config"
	"course-payments-bot/internal/delivery/httpapi"
	"course-payments-bot/internal/delivery/telegram"
	"course-payments-bot/internal/diagnostics"
	"course-payments-bot/internal/hints"
	"course-payments-bot/internal/identity"
	"course-payments-bot/internal/infrastructure/audit"
	"course-payments-bot/internal/infrastructure/persistence/postgres/database"
	paymentrepo "course-payments-bot/internal/infrastructure/persistence/postgres/repository/payment"
	"course-payments-bot/internal/invoice"
	"course-payments-bot/internal/utils"
	"course-payments-bot/pkg/logger"
)

const defaultAPIHost = "https://api.telegram.org"

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	if err := logger.InitGlobal(cfg.LogFile, cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}

	fmt.Println("💳 БОТ ПРОДАЖИ КУРСА ЧЕРЕЗ TELEGRAM PAYMENTS")
	fmt.Printf("🔧 Конфигурация:\n")
	fmt.Printf("   Продукт: %s (%.0f %s)\n", cfg.ProductTitle, cfg.ProductPriceMajor, cfg.ProductCurrency)
	fmt.Printf("   Токен провайдера: %s\n", utils.MaskToken(cfg.ProviderToken))
	fmt.Printf("   HTTP-порт: %s (включен: %v)\n", cfg.HttpPort, cfg.HttpEnabled)
	fmt.Printf("   База данных: %v\n", cfg.DatabaseURL != "")
	fmt.Printf("   Redis-аудит: %v\n", cfg.RedisAddr != "")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Клиент Telegram
	var bot *tgbotapi.BotAPI
	if cfg.TelegramAPIHost != defaultAPIHost {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.TelegramBotToken, cfg.TelegramAPIHost+"/bot%s/%s")
	} else {
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	}
	if err != nil {
		log.Fatalf("Не удалось создать клиент Telegram: %v", err)
	}

	product := cfg.Product()

	// Идентичность бота: best-effort, одна попытка + один повтор
	holder := identity.NewHolder()
	identity.NewResolver(bot, holder).Start()

	// Хранилище завершённых платежей (опционально)
	var payments telegram.PaymentRecorder
	var dbService *database.Service
	if cfg.DatabaseURL != "" {
		dbService = database.NewService(cfg.DatabaseURL)
		if err := dbService.Start(ctx); err != nil {
			log.Fatalf("Не удалось подключиться к базе данных: %v", err)
		}

		repo := paymentrepo.NewRepository(dbService.GetDB())
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Не удалось подготовить схему базы: %v", err)
		}
		payments = repo
	} else {
		logger.Warn("⚠️ DATABASE_URL не задан, завершённые платежи не сохраняются")
	}

	// Аудит отправок в Redis (опционально)
	var sink invoice.AuditSink
	var trailReader httpapi.AuditReader
	if cfg.RedisAddr != "" {
		client, err := audit.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Не удалось подключиться к Redis: %v", err)
		}
		defer client.Close()

		trail := audit.NewRedisTrail(client, cfg.AuditTrailCap)
		sink = trail
		trailReader = trail
	} else {
		logger.Warn("⚠️ REDIS_ADDR не задан, аудит отправок отключён")
	}

	// Двухуровневая отправка инвойсов
	fallback := invoice.NewFallbackClient(cfg.TelegramAPIHost, cfg.TelegramBotToken, cfg.FallbackTimeout)
	dispatcher := invoice.NewDispatcher(bot, product, fallback, sink)

	reporter := diagnostics.NewReporter(product, holder)
	hinter := hints.NewSender(bot, holder, product.StartParameter)

	// HTTP-поверхность диагностики
	var server *httpapi.Server
	if cfg.HttpEnabled {
		server = httpapi.NewServer(cfg.HttpPort, httpapi.NewHandlers(product, dispatcher, reporter, trailReader))
		server.Start()
	}

	// Long-polling обновлений
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	chatBot := telegram.NewBot(bot, product, dispatcher, hinter, payments)
	go chatBot.Run(ctx, updates)

	logger.Info("✅ Бот запущен")

	// Ожидаем сигнал завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("🛑 Завершение работы...")
	cancel()
	bot.StopReceivingUpdates()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("❌ Ошибка остановки HTTP-сервера: %v", err)
		}
	}

	if dbService != nil {
		if err := dbService.Stop(); err != nil {
			logger.Error("❌ Ошибка остановки сервиса базы данных: %v", err)
		}
	}

	logger.Info("✅ Бот остановлен")
}
