package bot

import (
	"fmt"
	"strings"

	"sportbot/internal/models"
	"sportbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Создать профиль", "setup_profile"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💪 Тренировка", "workout"),
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Рецепт", "recipe"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Прогресс", "progress"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", "settings"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔥 Premium", "subscribe"),
		),
	)
}

func subscribeGateKeyboard(channel string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Подписаться",
				"https://t.me/"+strings.TrimPrefix(channel, "@")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Проверить", "check_subscription"),
		),
	)
}

func setupProfileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Создать профиль", "setup_profile"),
		),
	)
}

// stepKeyboard строит кнопки шага анкеты. Callback-токен собирается как
// profile_<поле>_<значение>, значения всегда латиница.
func stepKeyboard(def service.StepDef) *tgbotapi.InlineKeyboardMarkup {
	if def.Kind != service.StepKindChoice {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(def.Choices))
	for _, choice := range def.Choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choiceLabels[choice],
				fmt.Sprintf("profile_%s_%s", def.Field, choice)),
		))
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func settingsKeyboard(settings *models.Settings) tgbotapi.InlineKeyboardMarkup {
	modeIcon, modeText := "🔇", "📝 Текст"
	if settings.VoiceMode {
		modeIcon, modeText = "🔊", "🎙️ Голос"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s Режим: %s", modeIcon, modeText), "toggle_voice"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺", "lang_ru"),
			tgbotapi.NewInlineKeyboardButtonData("🇺🇸", "lang_en"),
			tgbotapi.NewInlineKeyboardButtonData("🇰🇷", "lang_ko"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "back_to_menu"),
		),
	)
}

func premiumOfferKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Оплатить 99₽", "pay"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Бесплатно (друзья)", "ref_info"),
		),
	)
}

func subscribeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💎 Premium", "subscribe"),
		),
	)
}

func workoutTypesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💪 Силовая", "w_strength"),
			tgbotapi.NewInlineKeyboardButtonData("🔥 Кардио", "w_cardio"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧘 Растяжка", "w_stretch"),
			tgbotapi.NewInlineKeyboardButtonData("⚡ HIIT", "w_hiit"),
		),
	)
}

func workoutDoneKeyboard(workoutID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполнено!", fmt.Sprintf("done_%d", workoutID)),
		),
	)
}

func recipeTypesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍳 Завтрак", "r_breakfast"),
			tgbotapi.NewInlineKeyboardButtonData("🥗 Обед", "r_lunch"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍲 Ужин", "r_dinner"),
			tgbotapi.NewInlineKeyboardButtonData("💪 Белковое", "r_protein"),
		),
	)
}

func anotherRecipeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Другой", "recipe"),
		),
	)
}
