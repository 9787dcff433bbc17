package bot

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sportbot/internal/config"
	"sportbot/internal/database"
	"sportbot/internal/domain"
	"sportbot/internal/events"
	"sportbot/internal/models"
	"sportbot/internal/repository"
	"sportbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTelegramService struct {
	domain.TelegramService
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    map[int64]int // chatID -> count of outgoing messages
}

func newStubTelegramService() *stubTelegramService {
	return &stubTelegramService{
		updates: make(chan tgbotapi.Update, 4),
		sent:    make(map[int64]int),
	}
}

func (s *stubTelegramService) record(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[chatID]++
}

func (s *stubTelegramService) sentCount(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[chatID]
}

func (s *stubTelegramService) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return s.updates
}

func (s *stubTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

func (s *stubTelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *stubTelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	s.record(chatID)
	return tgbotapi.Message{}, nil
}

func (s *stubTelegramService) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	s.record(chatID)
	return tgbotapi.Message{}, nil
}

func (s *stubTelegramService) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	s.record(chatID)
	return tgbotapi.Message{}, nil
}

// stubAIClient отвечает мгновенно, либо ошибкой, либо ждет block для
// указанного пользователя.
type stubAIClient struct {
	err      error
	blockFor int64
	block    chan struct{}
}

func (s *stubAIClient) Ask(ctx context.Context, user *models.User, history []models.ChatMessage, question string) (string, error) {
	if s.block != nil && user.ID == s.blockFor {
		<-s.block
	}
	if s.err != nil {
		return "", s.err
	}
	return "ответ", nil
}

func (s *stubAIClient) GenerateWorkout(ctx context.Context, user *models.User) (string, error) {
	return "тренировка", s.err
}

func (s *stubAIClient) GenerateRecipe(ctx context.Context, user *models.User) (string, error) {
	return "рецепт", s.err
}

func newTestBot(t *testing.T, ai domain.AIClient) (*Bot, *stubTelegramService, *database.DB) {
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "bot.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Quota.FreeQuestionsPerDay = 5
	cfg.Referral.ReferrerBonusDays = 7
	cfg.History.Keep = 10
	cfg.History.ContextWindow = 5
	cfg.History.MaxContentRunes = 2000
	cfg.Payments.PremiumDays = 30
	cfg.Bot.UpdateTimeout = 1

	states := repository.NewMemoryStateRepository(time.Hour)
	bus := events.NewEventBus()
	tg := newStubTelegramService()

	b := NewBot(Deps{
		Telegram:     tg,
		Config:       cfg,
		Store:        db,
		States:       states,
		Quota:        service.NewQuotaService(db, cfg, &logger, bus),
		Entitlements: service.NewEntitlementService(db, cfg, &logger, bus),
		Referrals:    service.NewReferralService(db, cfg, &logger, bus),
		Profile:      service.NewProfileService(db, cfg, &logger, bus),
		Conversation: service.NewConversationService(db, cfg, &logger),
		Fitness:      service.NewFitnessService(db, cfg, &logger, bus),
		Settings:     service.NewSettingsService(db, states, &logger),
		AI:           ai,
		EventBus:     bus,
		Logger:       &logger,
	})
	return b, tg, db
}

func messageUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "user"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func TestHandleQuestion_ChargesOnAIFailure(t *testing.T) {
	b, tg, db := newTestBot(t, &stubAIClient{err: errors.New("model unavailable")})
	ctx := context.Background()

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)
	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)

	question := "как накачать пресс"
	b.handleQuestion(ctx, messageUpdate(100, question), user, question)

	// Лимит списан и вопрос записан, даже когда модель не ответила
	user, err = db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, user.FreeQuestions)

	stat, err := db.GetStat(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.TotalQuestions)

	history, err := db.GetRecentMessages(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].Role)

	// Пользователь получил сообщение о недоступности
	assert.NotZero(t, tg.sentCount(100))
}

func TestHandleQuestion_AppendsAnswerOnSuccess(t *testing.T) {
	b, _, db := newTestBot(t, &stubAIClient{})
	ctx := context.Background()

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)
	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)

	b.handleQuestion(ctx, messageUpdate(100, "как накачать пресс"), user, "как накачать пресс")

	history, err := db.GetRecentMessages(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
}

func TestStart_UpdatesProcessedConcurrently(t *testing.T) {
	release := make(chan struct{})
	b, tg, _ := newTestBot(t, &stubAIClient{blockFor: 100, block: release})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Start(ctx)

	// Первый пользователь застревает в запросе к модели
	tg.updates <- messageUpdate(100, "составь программ тренировок")
	tg.updates <- messageUpdate(200, "привет")

	// Второй получает ответ, не дожидаясь первого
	require.Eventually(t, func() bool { return tg.sentCount(200) > 0 },
		2*time.Second, 10*time.Millisecond)
	assert.Zero(t, tg.sentCount(100))

	close(release)
	require.Eventually(t, func() bool { return tg.sentCount(100) > 0 },
		2*time.Second, 10*time.Millisecond)
}
