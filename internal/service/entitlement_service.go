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

// EntitlementService управляет премиум-доступом: активация, оплаты и
// проекция статуса.
type EntitlementService struct {
	store  domain.Store
	config *config.Config
	logger *zerolog.Logger
	events domain.EventPublisher
}

func NewEntitlementService(store domain.Store, config *config.Config, logger *zerolog.Logger, publisher domain.EventPublisher) *EntitlementService {
	return &EntitlementService{
		store:  store,
		config: config,
		logger: logger,
		events: publisher,
	}
}

// IsPremiumNow проверяет премиум на текущую дату, дата окончания включительно.
func (s *EntitlementService) IsPremiumNow(user *models.User) bool {
	return premiumActive(user, s.store.Today())
}

// Activate продлевает премиум на days дней и возвращает новую дату окончания.
func (s *EntitlementService) Activate(ctx context.Context, userID int64, days int, source string) (string, error) {
	until, err := s.store.ActivatePremium(ctx, userID, days)
	if err != nil {
		return "", err
	}

	_ = s.events.PublishJSON(events.EventPremiumActivated, events.PremiumEventPayload{
		UserID: userID,
		Days:   days,
		Until:  until,
		Source: source,
	})
	return until, nil
}

// RecordPayment зачисляет успешную оплату Telegram и продлевает премиум.
func (s *EntitlementService) RecordPayment(ctx context.Context, payment *models.Payment) (string, error) {
	until, err := s.store.RecordPayment(ctx, payment)
	if err != nil {
		return "", err
	}

	_ = s.events.PublishJSON(events.EventPaymentReceived, events.PremiumEventPayload{
		UserID: payment.UserID,
		Days:   payment.Days,
		Until:  until,
		Source: "payment",
	})
	return until, nil
}

// StatusOf строит проекцию статуса без форматирования в текст. DaysLeft
// считается включительно: премиум до сегодняшней даты — это еще один день.
func (s *EntitlementService) StatusOf(ctx context.Context, userID int64) (*models.EntitlementStatus, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &models.EntitlementStatus{
		FreeQuestionsRemaining: user.FreeQuestions,
	}

	if !premiumActive(user, s.store.Today()) {
		return status, nil
	}

	until, _ := user.PremiumUntilDate()
	today, err := time.Parse(models.DateLayout, s.store.Today())
	if err != nil {
		return status, nil
	}

	status.IsPremium = true
	status.Until = until.Format(models.DateLayout)
	status.DaysLeft = int(until.Sub(today).Hours()/24) + 1
	return status, nil
}
