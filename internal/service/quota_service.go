package service

import (
	"context"
	"time"

	"sportbot/internal/config"
	"sportbot/internal/domain"
	"sportbot/internal/events"
	"sportbot/internal/models"

	"github.com/rs/zerolog"
)

// QuotaService отвечает за дневной лимит бесплатных вопросов.
type QuotaService struct {
	store  domain.Store
	config *config.Config
	logger *zerolog.Logger
	events domain.EventPublisher
}

func NewQuotaService(store domain.Store, config *config.Config, logger *zerolog.Logger, publisher domain.EventPublisher) *QuotaService {
	return &QuotaService{
		store:  store,
		config: config,
		logger: logger,
		events: publisher,
	}
}

// EnsureDailyQuota восстанавливает лимит при смене календарной даты.
// Вызывается перед каждой проверкой, повторный вызов в тот же день безвреден.
func (s *QuotaService) EnsureDailyQuota(ctx context.Context, userID int64) error {
	return s.store.ResetQuotaIfNewDay(ctx, userID, s.config.Quota.FreeQuestionsPerDay)
}

// CanAsk решает, доступен ли пользователю вопрос прямо сейчас. Премиум не
// расходует лимит: remaining для него равен UnlimitedQuestions.
func (s *QuotaService) CanAsk(ctx context.Context, userID int64) (models.QuotaCheck, error) {
	if err := s.EnsureDailyQuota(ctx, userID); err != nil {
		return models.QuotaCheck{}, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return models.QuotaCheck{}, err
	}

	if premiumActive(user, s.store.Today()) {
		return models.QuotaCheck{Allowed: true, Remaining: models.UnlimitedQuestions}, nil
	}

	return models.QuotaCheck{
		Allowed:   user.FreeQuestions > 0,
		Remaining: user.FreeQuestions,
	}, nil
}

// Consume списывает вопрос после успешного ответа. У премиума списывается
// только статистика, остаток бесплатных вопросов не трогается.
func (s *QuotaService) Consume(ctx context.Context, user *models.User) error {
	premium := premiumActive(user, s.store.Today())

	var err error
	if premium {
		err = s.store.IncrementQuestions(ctx, user.ID)
	} else {
		err = s.store.ConsumeQuestion(ctx, user.ID)
	}
	if err != nil {
		return err
	}

	remaining := models.UnlimitedQuestions
	if !premium {
		remaining = user.FreeQuestions - 1
		if remaining < 0 {
			remaining = 0
		}
	}

	_ = s.events.PublishJSON(events.EventQuestionAsked, events.QuestionEventPayload{
		UserID:    user.ID,
		Remaining: remaining,
		Premium:   premium,
	})
	return nil
}

// premiumActive проверяет премиум по флагу и дате окончания включительно.
// Нечитаемая дата означает отсутствие премиума.
func premiumActive(user *models.User, today string) bool {
	if user == nil || !user.IsPremium {
		return false
	}
	until, ok := user.PremiumUntilDate()
	if !ok {
		return false
	}
	now, err := time.Parse(models.DateLayout, today)
	if err != nil {
		return false
	}
	return !until.Before(now)
}
