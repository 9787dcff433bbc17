package domain

import (
	"context"
	"database/sql"
	"time"

	"sportbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Store interface {
	CreateUserIfAbsent(ctx context.Context, userID int64, username string) (bool, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (total, premium int64, err error)

	SetProfileField(ctx context.Context, userID int64, field string, value interface{}) error
	SetProfileFieldAndStep(ctx context.Context, userID int64, field string, value interface{}, nextStep sql.NullString) error
	SetProfileStep(ctx context.Context, userID int64, step sql.NullString) error
	SetVoiceMode(ctx context.Context, userID int64, enabled bool) error
	SetLanguage(ctx context.Context, userID int64, language string) error

	ResetQuotaIfNewDay(ctx context.Context, userID int64, limit int) error
	ConsumeQuestion(ctx context.Context, userID int64) error

	ActivatePremium(ctx context.Context, userID int64, days int) (string, error)
	RecordPayment(ctx context.Context, payment *models.Payment) (string, error)
	GetPayments(ctx context.Context, userID int64) ([]*models.Payment, error)

	RedeemReferral(ctx context.Context, newUserID int64, code string, referrerBonusDays, referredBonusDays int) (int64, error)

	AppendMessage(ctx context.Context, userID int64, role, content string, keep, maxRunes int) error
	GetRecentMessages(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error)
	ClearHistory(ctx context.Context, userID int64) error

	AddWeightRecord(ctx context.Context, userID int64, weight float64) error
	GetWeightHistory(ctx context.Context, userID int64, limit int) ([]models.ProgressSample, error)
	CreateWorkout(ctx context.Context, userID int64, text string) (int64, error)
	CompleteWorkout(ctx context.Context, userID, workoutID int64) error
	IncrementQuestions(ctx context.Context, userID int64) error
	IncrementRecipes(ctx context.Context, userID int64) error
	GetStat(ctx context.Context, userID int64) (*models.Stat, error)
	GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error)

	Today() string
}

type StateRepository interface {
	GetSettings(ctx context.Context, userID int64) (*models.Settings, error)
	SetSettings(ctx context.Context, settings *models.Settings) error
	ClearSettings(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type AIClient interface {
	Ask(ctx context.Context, user *models.User, history []models.ChatMessage, question string) (string, error)
	GenerateWorkout(ctx context.Context, user *models.User) (string, error)
	GenerateRecipe(ctx context.Context, user *models.User) (string, error)
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
