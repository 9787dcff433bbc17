package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sportbot/internal/ai"
	"sportbot/internal/api"
	"sportbot/internal/bot"
	"sportbot/internal/config"
	"sportbot/internal/database"
	"sportbot/internal/events"
	"sportbot/internal/logging"
	"sportbot/internal/models"
	"sportbot/internal/repository"
	"sportbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateRepo := initStateRepository(ctx, cfg, &logger)
	defer func() { _ = repository.Close(redisClient) }()

	eventBus := events.NewEventBus()
	subscribeEvents(eventBus, &logger)

	// Бизнес-сервисы
	quotaService := service.NewQuotaService(db, cfg, &logger, eventBus)
	entitlementService := service.NewEntitlementService(db, cfg, &logger, eventBus)
	referralService := service.NewReferralService(db, cfg, &logger, eventBus)
	profileService := service.NewProfileService(db, cfg, &logger, eventBus)
	conversationService := service.NewConversationService(db, cfg, &logger)
	fitnessService := service.NewFitnessService(db, cfg, &logger, eventBus)
	settingsService := service.NewSettingsService(db, stateRepo, &logger)
	aiClient := ai.NewClient(cfg.AI, &logger)
	metrics := bot.NewMetrics()

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, db, entitlementService, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	return startBot(ctx, cfg, bot.Deps{
		Config:       cfg,
		Store:        db,
		States:       stateRepo,
		Quota:        quotaService,
		Entitlements: entitlementService,
		Referrals:    referralService,
		Profile:      profileService,
		Conversation: conversationService,
		Fitness:      fitnessService,
		Settings:     settingsService,
		AI:           aiClient,
		EventBus:     eventBus,
		Metrics:      metrics,
		Logger:       &logger,
	})
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverStateRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultRedisTTL) * time.Second
	primaryRepo := repository.NewRedisStateRepository(redisClient, ttl)
	fallbackRepo := repository.NewMemoryStateRepository(ttl)
	return redisClient, repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
}

func startBot(ctx context.Context, cfg *config.Config, deps bot.Deps) error {
	logger := deps.Logger

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	deps.Telegram = service.NewTelegramService(bot.NewBotWrapper(botAPI))

	telegramBot := bot.NewBot(deps)

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// subscribeEvents вешает на шину информационные подписчики. Обработчики
// только логируют: внешних потребителей у событий пока нет.
func subscribeEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.Subscribe(events.EventPremiumActivated, func(ev *events.Event) error {
		var payload events.PremiumEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().Int64("user_id", payload.UserID).Int("days", payload.Days).
			Str("until", payload.Until).Str("source", payload.Source).
			Msg("Премиум продлен")
		return nil
	})

	bus.Subscribe(events.EventReferralRedeemed, func(ev *events.Event) error {
		var payload events.ReferralEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().Int64("referrer_id", payload.ReferrerID).
			Int64("referred_id", payload.ReferredID).
			Msg("Реферальный код погашен")
		return nil
	})
}
