package bot

import (
	"errors"

	"sportbot/internal/database"
	"sportbot/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, service.ErrInvalidHeight) {
		return "❌ Введи корректный рост (100-250 см)"
	}

	if errors.Is(err, service.ErrInvalidWeight) {
		return "❌ Введи корректный вес (30-300 кг)"
	}

	if errors.Is(err, service.ErrInvalidAge) {
		return "❌ Введи корректный возраст (10-100 лет)"
	}

	if errors.Is(err, service.ErrInvalidChoice) || errors.Is(err, service.ErrUnexpectedStep) {
		return textChooseAbove
	}

	if errors.Is(err, database.ErrWorkoutNotFound) {
		return "⚠️ Тренировка не найдена или уже отмечена."
	}

	if errors.Is(err, database.ErrUserNotFound) {
		return "⚠️ Пользователь не найден. Нажми /start"
	}

	return textGenericError
}
