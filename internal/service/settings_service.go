package service

import (
	"context"

	"sportbot/internal/domain"
	"sportbot/internal/models"

	"github.com/rs/zerolog"
)

// SettingsService отдает настройки пользователя через кэш. Источник истины —
// база, кэш только ускоряет горячий путь обработки сообщений.
type SettingsService struct {
	store  domain.Store
	states domain.StateRepository
	logger *zerolog.Logger
}

func NewSettingsService(store domain.Store, states domain.StateRepository, logger *zerolog.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		states: states,
		logger: logger,
	}
}

// Get читает настройки из кэша, при промахе — из базы с прогревом кэша.
func (s *SettingsService) Get(ctx context.Context, userID int64) (*models.Settings, error) {
	cached, err := s.states.GetSettings(ctx, userID)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Кэш настроек недоступен")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings := &models.Settings{
		UserID:    user.ID,
		VoiceMode: user.VoiceMode,
		Language:  user.Language,
	}
	if err := s.states.SetSettings(ctx, settings); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Не удалось прогреть кэш настроек")
	}
	return settings, nil
}

// ToggleVoice переключает голосовой режим и возвращает новое значение.
func (s *SettingsService) ToggleVoice(ctx context.Context, userID int64) (bool, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	enabled := !settings.VoiceMode
	if err := s.store.SetVoiceMode(ctx, userID, enabled); err != nil {
		return false, err
	}

	settings.VoiceMode = enabled
	if err := s.states.SetSettings(ctx, settings); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Не удалось обновить кэш настроек")
	}
	return enabled, nil
}

// SetLanguage меняет язык интерфейса. Неизвестный код заменяется русским
// на уровне базы.
func (s *SettingsService) SetLanguage(ctx context.Context, userID int64, language string) error {
	if err := s.store.SetLanguage(ctx, userID, language); err != nil {
		return err
	}

	if !models.ValidLanguage(language) {
		language = models.LangRU
	}
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil
	}
	settings.Language = language
	if err := s.states.SetSettings(ctx, settings); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Не удалось обновить кэш настроек")
	}
	return nil
}
