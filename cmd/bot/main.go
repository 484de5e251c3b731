package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/CrumleyG/dataklinik-bot/internal/airtable"
	"github.com/CrumleyG/dataklinik-bot/internal/app"
	"github.com/CrumleyG/dataklinik-bot/internal/catalog"
	"github.com/CrumleyG/dataklinik-bot/internal/config"
	"github.com/CrumleyG/dataklinik-bot/internal/controller"
	"github.com/CrumleyG/dataklinik-bot/internal/extract"
	"github.com/CrumleyG/dataklinik-bot/internal/notify"
	"github.com/CrumleyG/dataklinik-bot/internal/oracle"
	"github.com/CrumleyG/dataklinik-bot/internal/repository"
	"github.com/CrumleyG/dataklinik-bot/internal/service"
	"github.com/CrumleyG/dataklinik-bot/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище записей
	var store service.BookingStore
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		migrator, err := app.NewMigrator(pool, "migrations", logger)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		migrator.Close()

		store = repository.NewBookingRepository(pool)
	case config.StorageAirtable:
		store = airtable.New(cfg.AirtableToken, cfg.AirtableBaseID, cfg.AirtableTableName)
	}

	// Каталог услуг
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("Failed to load service catalog",
			zap.String("path", cfg.CatalogPath),
			zap.Error(err))
	}
	logger.Info("Service catalog loaded",
		zap.String("path", cfg.CatalogPath),
		zap.Int("services", len(cat.List())))

	// Telegram bot
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	notifier := notify.New(b, cfg.StaffChatID, logger)

	// Экстрактор полей анкеты
	var extractorOpts []extract.Option
	if cfg.NameFallback {
		extractorOpts = append(extractorOpts, extract.WithNameFallback())
	}
	extractor := extract.New(cat, extractorOpts...)

	// Сервисы
	sessions := session.NewManager()
	availability := service.NewAvailabilityService(cat, store, logger)
	llm := oracle.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	intake := service.NewIntakeService(sessions, extractor, cat, availability, store, llm, notifier, logger)

	// Напоминания о сегодняшних записях
	scheduler, err := app.NewScheduler(store, notifier, cfg.ReminderHour, logger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	botController := controller.NewBotController(b, intake, notifier, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	logger.Info("Starting dataklinik bot",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage))

	botController.Start(ctx)

	logger.Info("Bot stopped")
}
