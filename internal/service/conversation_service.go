package service

import (
	"context"

	"sportbot/internal/config"
	"sportbot/internal/domain"
	"sportbot/internal/models"

	"github.com/rs/zerolog"
)

// ConversationService хранит скользящее окно диалога. Окно держит последние
// Keep сообщений, в контекст модели уходят только последние ContextWindow и
// только для премиума.
type ConversationService struct {
	store  domain.Store
	config *config.Config
	logger *zerolog.Logger
}

func NewConversationService(store domain.Store, config *config.Config, logger *zerolog.Logger) *ConversationService {
	return &ConversationService{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Append добавляет сообщение и сразу подрезает окно до лимита.
func (s *ConversationService) Append(ctx context.Context, userID int64, role, content string) error {
	return s.store.AppendMessage(ctx, userID, role, content,
		s.config.History.Keep, s.config.History.MaxContentRunes)
}

// ContextFor возвращает контекст для модели в хронологическом порядке.
// Для пользователей без премиума контекст пуст: каждый вопрос отвечается
// без памяти о прошлых.
func (s *ConversationService) ContextFor(ctx context.Context, user *models.User) ([]models.ChatMessage, error) {
	if !premiumActive(user, s.store.Today()) {
		return nil, nil
	}
	return s.store.GetRecentMessages(ctx, user.ID, s.config.History.ContextWindow)
}

// History возвращает сохраненное окно целиком, для просмотра пользователем.
func (s *ConversationService) History(ctx context.Context, userID int64) ([]models.ChatMessage, error) {
	return s.store.GetRecentMessages(ctx, userID, s.config.History.Keep)
}

// Clear стирает историю диалога пользователя.
func (s *ConversationService) Clear(ctx context.Context, userID int64) error {
	return s.store.ClearHistory(ctx, userID)
}
