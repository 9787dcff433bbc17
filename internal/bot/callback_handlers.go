package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sportbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	query := update.CallbackQuery
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data
	l := zerolog.Ctx(ctx)

	l.Debug().Int64("user_id", userID).Str("data", data).Msg("Handling callback")

	if _, err := b.store.CreateUserIfAbsent(ctx, userID, query.From.UserName); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to ensure user")
		return
	}

	switch {
	case data == "check_subscription":
		if b.checkSubscription(ctx, userID) {
			_ = b.tg.AnswerCallback(query.ID, "")
			_, _ = b.tg.EditMessage(chatID, query.Message.MessageID, textSubscribeOK, nil)
		} else {
			_ = b.tg.AnswerCallback(query.ID, textSubscribeFail)
		}

	case data == "back_to_menu":
		_ = b.tg.AnswerCallback(query.ID, "")
		del := tgbotapi.NewDeleteMessage(chatID, query.Message.MessageID)
		_, _ = b.tg.Request(del)

	case data == "setup_profile":
		_ = b.tg.AnswerCallback(query.ID, "")
		b.startProfileWizard(ctx, chatID, query.Message.MessageID, userID)

	case strings.HasPrefix(data, "profile_"):
		_ = b.tg.AnswerCallback(query.ID, "")
		b.handleProfileChoice(ctx, chatID, userID, data)

	case data == "settings":
		_ = b.tg.AnswerCallback(query.ID, "")
		b.showSettings(ctx, chatID, query.Message.MessageID, userID)

	case data == "toggle_voice":
		b.handleToggleVoice(ctx, query)

	case strings.HasPrefix(data, "lang_"):
		b.handleLanguageChoice(ctx, query)

	case data == "progress":
		_ = b.tg.AnswerCallback(query.ID, "")
		b.showProgress(ctx, chatID, userID)

	case data == "workout":
		_ = b.tg.AnswerCallback(query.ID, "")
		b.showWorkoutTypes(ctx, chatID, userID)

	case strings.HasPrefix(data, "w_"):
		_ = b.tg.AnswerCallback(query.ID, "")
		b.generateWorkout(ctx, query, strings.TrimPrefix(data, "w_"))

	case strings.HasPrefix(data, "done_"):
		b.completeWorkout(ctx, query, strings.TrimPrefix(data, "done_"))

	case data == "recipe":
		_ = b.tg.AnswerCallback(query.ID, "")
		_, _ = b.tg.SendWithInlineKeyboard(chatID, "🍽️ *Что приготовить?*", recipeTypesKeyboard())

	case strings.HasPrefix(data, "r_"):
		_ = b.tg.AnswerCallback(query.ID, "")
		b.generateRecipe(ctx, query, strings.TrimPrefix(data, "r_"))

	case data == "subscribe":
		_ = b.tg.AnswerCallback(query.ID, "")
		_, _ = b.tg.SendWithInlineKeyboard(chatID, textPremiumOffer, premiumOfferKeyboard())

	case data == "pay":
		_ = b.tg.AnswerCallback(query.ID, "")
		b.sendInvoice(ctx, chatID)

	case data == "ref_info":
		_ = b.tg.AnswerCallback(query.ID, "")
		b.showReferralInfo(ctx, chatID, userID)

	default:
		_ = b.tg.AnswerCallback(query.ID, "")
	}
}

func (b *Bot) startProfileWizard(ctx context.Context, chatID int64, messageID int, userID int64) {
	first, err := b.profile.Start(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to start wizard")
		b.reply(chatID, textGenericError)
		return
	}

	if _, err := b.tg.EditMessage(chatID, messageID, stepPrompts[first.Step], nil); err != nil {
		b.replyMarkdown(chatID, stepPrompts[first.Step])
	}
}

// handleProfileChoice разбирает токен profile_<поле>_<значение>. Значение
// может содержать подчеркивания, поэтому режем только два раза.
func (b *Bot) handleProfileChoice(ctx context.Context, chatID, userID int64, data string) {
	parts := strings.SplitN(data, "_", 3)
	if len(parts) < 3 {
		return
	}
	field, value := parts[1], parts[2]

	result, err := b.profile.HandleChoice(ctx, userID, models.ProfileStep(field), value)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	b.advanceWizard(ctx, chatID, userID, result)
}

func (b *Bot) showSettings(ctx context.Context, chatID int64, messageID int, userID int64) {
	settings, err := b.settings.Get(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	modeText := "📝 Текст"
	if settings.VoiceMode {
		modeText = "🎙️ Голос"
	}
	kb := settingsKeyboard(settings)
	text := fmt.Sprintf("⚙️ *Настройки*\n\n📢 Режим: *%s*", modeText)
	if _, err := b.tg.EditMessage(chatID, messageID, text, &kb); err != nil {
		_, _ = b.tg.SendWithInlineKeyboard(chatID, text, kb)
	}
}

func (b *Bot) handleToggleVoice(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID

	enabled, err := b.settings.ToggleVoice(ctx, userID)
	if err != nil {
		_ = b.tg.AnswerCallback(query.ID, textGenericError)
		return
	}

	if enabled {
		_ = b.tg.AnswerCallback(query.ID, "🎙️ Голос!")
	} else {
		_ = b.tg.AnswerCallback(query.ID, "📝 Текст!")
	}

	b.showSettings(ctx, query.Message.Chat.ID, query.Message.MessageID, userID)
}

func (b *Bot) handleLanguageChoice(ctx context.Context, query *tgbotapi.CallbackQuery) {
	lang := strings.TrimPrefix(query.Data, "lang_")

	if err := b.settings.SetLanguage(ctx, query.From.ID, lang); err != nil {
		_ = b.tg.AnswerCallback(query.ID, textGenericError)
		return
	}

	langNames := map[string]string{
		models.LangRU: "🇷🇺 Русский",
		models.LangEN: "🇺🇸 English",
		models.LangKO: "🇰🇷 한국어",
	}
	_ = b.tg.AnswerCallback(query.ID, "Язык: "+langNames[lang])
}

func (b *Bot) showProgress(ctx context.Context, chatID, userID int64) {
	records, err := b.fitness.WeightHistory(ctx, userID, models.HistoryKeep)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if len(records) == 0 {
		b.replyMarkdown(chatID, "📊 *Прогресс*\n\nЗаписей нет.\n\nНапиши: `Вес 75.5`")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 *Прогресс:*\n\n")
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("• %s: *%.1f кг*\n", r.Date.Format("02.01"), r.Weight))
	}

	// Записи идут от новых к старым: прогресс — это первая минус последняя
	if len(records) >= 2 {
		diff := records[0].Weight - records[len(records)-1].Weight
		if diff > 0 {
			sb.WriteString(fmt.Sprintf("\n📈 +%.1f кг", diff))
		} else if diff < 0 {
			sb.WriteString(fmt.Sprintf("\n📉 %.1f кг — прогресс!", diff))
		}
	}

	b.replyMarkdown(chatID, sb.String())
}

func (b *Bot) showWorkoutTypes(ctx context.Context, chatID, userID int64) {
	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if !user.HasProfile() {
		_, _ = b.tg.SendWithInlineKeyboard(chatID, "❌ Сначала создай профиль!", setupProfileKeyboard())
		return
	}

	_, _ = b.tg.SendWithInlineKeyboard(chatID, "💪 *Выбери тип:*", workoutTypesKeyboard())
}

func (b *Bot) generateWorkout(ctx context.Context, query *tgbotapi.CallbackQuery, wtype string) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	_, _ = b.tg.EditMessage(chatID, query.Message.MessageID, "💪 Составляю тренировку...", nil)

	text, err := b.ai.GenerateWorkout(ctx, user)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Str("type", wtype).Msg("Workout generation failed")
		b.reply(chatID, "⚠️ Не получилось составить тренировку. Попробуй позже.")
		return
	}

	workoutID, err := b.fitness.SaveWorkout(ctx, userID, text)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to save workout")
		b.replyMarkdown(chatID, "💪 *Тренировка:*\n\n"+text)
		return
	}

	if b.metrics != nil {
		b.metrics.WorkoutsGenerated.Inc()
	}

	kb := workoutDoneKeyboard(workoutID)
	if _, err := b.tg.EditMessage(chatID, query.Message.MessageID, "💪 *Тренировка:*\n\n"+text, &kb); err != nil {
		_, _ = b.tg.SendWithInlineKeyboard(chatID, "💪 *Тренировка:*\n\n"+text, kb)
	}
}

func (b *Bot) completeWorkout(ctx context.Context, query *tgbotapi.CallbackQuery, rawID string) {
	workoutID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		_ = b.tg.AnswerCallback(query.ID, "")
		return
	}

	if err := b.fitness.CompleteWorkout(ctx, query.From.ID, workoutID); err != nil {
		_ = b.tg.AnswerCallback(query.ID, b.getErrorMessage(err))
		return
	}

	_ = b.tg.AnswerCallback(query.ID, "🔥 Отлично!")
	b.reply(query.Message.Chat.ID, textWorkoutDone)
}

func (b *Bot) generateRecipe(ctx context.Context, query *tgbotapi.CallbackQuery, rtype string) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	_, _ = b.tg.EditMessage(chatID, query.Message.MessageID, "🍽️ Готовлю рецепт...", nil)

	text, err := b.ai.GenerateRecipe(ctx, user)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Str("type", rtype).Msg("Recipe generation failed")
		b.reply(chatID, "⚠️ Не получилось подобрать рецепт. Попробуй позже.")
		return
	}

	if err := b.fitness.CountRecipe(ctx, userID); err != nil {
		l.Warn().Err(err).Int64("user_id", userID).Msg("Failed to count recipe")
	}
	if b.metrics != nil {
		b.metrics.RecipesGenerated.Inc()
	}

	kb := anotherRecipeKeyboard()
	if _, err := b.tg.EditMessage(chatID, query.Message.MessageID, "🍽️ *Рецепт:*\n\n"+text, &kb); err != nil {
		_, _ = b.tg.SendWithInlineKeyboard(chatID, "🍽️ *Рецепт:*\n\n"+text, kb)
	}
}

func (b *Bot) showReferralInfo(ctx context.Context, chatID, userID int64) {
	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	link := b.referrals.Link(b.tg.GetSelf().UserName, user.ReferralCode)
	b.replyMarkdown(chatID, fmt.Sprintf("👥 *+%d дней за друга!*\n\n`%s`",
		b.config.Referral.ReferrerBonusDays, link))
}
