package bot

import (
	"context"
	"os"
	"time"

	"sportbot/internal/config"
	"sportbot/internal/domain"
	"sportbot/internal/events"
	"sportbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tg           domain.TelegramService
	config       *config.Config
	store        domain.Store
	states       domain.StateRepository
	quota        *service.QuotaService
	entitlements *service.EntitlementService
	referrals    *service.ReferralService
	profile      *service.ProfileService
	conversation *service.ConversationService
	fitness      *service.FitnessService
	settings     *service.SettingsService
	ai           domain.AIClient
	eventBus     *events.EventBus
	metrics      *Metrics
	logger       *zerolog.Logger
}

// Deps — зависимости бота. Все поля обязательны, кроме eventBus, metrics
// и logger.
type Deps struct {
	Telegram     domain.TelegramService
	Config       *config.Config
	Store        domain.Store
	States       domain.StateRepository
	Quota        *service.QuotaService
	Entitlements *service.EntitlementService
	Referrals    *service.ReferralService
	Profile      *service.ProfileService
	Conversation *service.ConversationService
	Fitness      *service.FitnessService
	Settings     *service.SettingsService
	AI           domain.AIClient
	EventBus     *events.EventBus
	Metrics      *Metrics
	Logger       *zerolog.Logger
}

func NewBot(deps Deps) *Bot {
	if deps.EventBus == nil {
		deps.EventBus = events.NewEventBus()
	}

	if deps.Logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		deps.Logger = &l
	}

	return &Bot{
		tg:           deps.Telegram,
		config:       deps.Config,
		store:        deps.Store,
		states:       deps.States,
		quota:        deps.Quota,
		entitlements: deps.Entitlements,
		referrals:    deps.Referrals,
		profile:      deps.Profile,
		conversation: deps.Conversation,
		fitness:      deps.Fitness,
		settings:     deps.Settings,
		ai:           deps.AI,
		eventBus:     deps.EventBus,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.Bot.UpdateTimeout
	if u.Timeout <= 0 {
		u.Timeout = 60
	}

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tg.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			// Каждое обновление — отдельная горутина: долгий запрос к
			// модели одного пользователя не задерживает остальных.
			// Составные операции в хранилище и так идут в транзакциях.
			go b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	// Контекст на обработку одного обновления
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	started := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(started).Seconds())
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.withRecovery(func() { b.handleCallbackQuery(updateCtx, update) })

	case update.PreCheckoutQuery != nil:
		b.withRecovery(func() { b.handlePreCheckout(updateCtx, update) })

	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		b.withRecovery(func() { b.handleSuccessfulPayment(updateCtx, update) })

	case update.Message != nil:
		if !b.allowMessage(updateCtx, update.Message.From.ID) {
			return
		}
		b.withRecovery(func() { b.handleMessage(updateCtx, update) })
	}
}

// allowMessage — защита от флуда на входе. Отказ молчаливый: спамеру не
// отвечаем, чтобы не усиливать поток.
func (b *Bot) allowMessage(ctx context.Context, userID int64) bool {
	limit := b.config.Bot.RateLimitMessages
	window := time.Duration(b.config.Bot.RateLimitWindow) * time.Second
	if limit <= 0 || window <= 0 {
		return true
	}

	allowed, err := b.states.CheckRateLimit(ctx, userID, limit, window)
	if err != nil {
		b.logger.Warn().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
		return true
	}
	if !allowed {
		b.logger.Warn().Int64("user_id", userID).Msg("Пользователь превысил лимит сообщений")
	}
	return allowed
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.IsAdmin(userID)
}
