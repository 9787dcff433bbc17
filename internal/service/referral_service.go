package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sportbot/internal/config"
	"sportbot/internal/database"
	"sportbot/internal/domain"
	"sportbot/internal/events"

	"github.com/rs/zerolog"
)

// ReferralService обрабатывает погашение реферальных кодов и строит
// пригласительные ссылки.
type ReferralService struct {
	store  domain.Store
	config *config.Config
	logger *zerolog.Logger
	events domain.EventPublisher
}

func NewReferralService(store domain.Store, config *config.Config, logger *zerolog.Logger, publisher domain.EventPublisher) *ReferralService {
	return &ReferralService{
		store:  store,
		config: config,
		logger: logger,
		events: publisher,
	}
}

// Redeem пытается погасить код для нового пользователя. Ожидаемые отказы
// (чужой код не найден, свой код, повторное погашение) не являются ошибками:
// возвращается (0, false, nil), диалог с пользователем продолжается молча.
func (s *ReferralService) Redeem(ctx context.Context, newUserID int64, code string) (int64, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, false, nil
	}

	referrerID, err := s.store.RedeemReferral(ctx, newUserID, code,
		s.config.Referral.ReferrerBonusDays, s.config.Referral.ReferredBonusDays)
	if err != nil {
		if errors.Is(err, database.ErrCodeNotFound) ||
			errors.Is(err, database.ErrSelfReferral) ||
			errors.Is(err, database.ErrAlreadyReferred) {
			s.logger.Debug().Int64("user_id", newUserID).Str("code", code).Err(err).
				Msg("Реферальный код не погашен")
			return 0, false, nil
		}
		return 0, false, err
	}

	_ = s.events.PublishJSON(events.EventReferralRedeemed, events.ReferralEventPayload{
		ReferrerID: referrerID,
		ReferredID: newUserID,
		Code:       code,
	})
	return referrerID, true, nil
}

// Link строит deep-link вида https://t.me/<bot>?start=<code>.
func (s *ReferralService) Link(botUsername, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, code)
}
