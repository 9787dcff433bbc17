package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sportbot/internal/models"
	"sportbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var weightPattern = regexp.MustCompile(`^вес\s+(\d+[.,]?\d*)`)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	l := zerolog.Ctx(ctx)

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
	}

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	if _, err := b.store.CreateUserIfAbsent(ctx, userID, update.Message.From.UserName); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to ensure user")
		b.reply(chatID, textGenericError)
		return
	}

	if update.Message.IsCommand() {
		b.handleCommand(ctx, update)
		return
	}

	if !b.checkSubscription(ctx, userID) && !b.isAdmin(userID) {
		b.sendGate(chatID)
		return
	}

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user")
		b.reply(chatID, textGenericError)
		return
	}

	// Активная анкета перехватывает любой текст
	if step, ok := b.profile.CurrentStep(user); ok {
		b.handleProfileText(ctx, chatID, userID, step, text)
		return
	}

	// Запись веса: "вес 75.5"
	if weight, ok := parseWeightMessage(text); ok {
		b.handleWeightLog(ctx, chatID, userID, weight)
		return
	}

	if !isFitnessQuestion(text) {
		b.replyMarkdown(chatID, textOffTopic)
		return
	}

	b.handleQuestion(ctx, update, user, text)
}

// parseWeightMessage распознает сообщение вида "вес 75.5" и проверяет
// диапазон.
func parseWeightMessage(text string) (float64, bool) {
	m := weightPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	weight, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || weight < models.WeightMin || weight > models.WeightMax {
		return 0, false
	}
	return weight, true
}

func (b *Bot) handleWeightLog(ctx context.Context, chatID, userID int64, weight float64) {
	result, err := b.fitness.LogWeight(ctx, userID, weight)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to log weight")
		b.reply(chatID, textGenericError)
		return
	}

	response := fmt.Sprintf("✅ *Вес записан: %.1f кг*\n", result.Weight)
	if result.HasDelta && result.Delta != 0 {
		if result.Delta > 0 {
			response += fmt.Sprintf("📈 +%.1f кг", result.Delta)
		} else {
			response += fmt.Sprintf("📉 %.1f кг — прогресс!", result.Delta)
		}
	}
	b.replyMarkdown(chatID, response)
}

func (b *Bot) handleProfileText(ctx context.Context, chatID, userID int64, step service.StepDef, text string) {
	if step.Kind == service.StepKindChoice {
		b.reply(chatID, textChooseAbove)
		return
	}

	result, err := b.profile.HandleText(ctx, userID, step.Step, text)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	b.advanceWizard(ctx, chatID, userID, result)
}

// advanceWizard показывает следующий шаг анкеты или финальную сводку.
func (b *Bot) advanceWizard(ctx context.Context, chatID, userID int64, result service.AdvanceResult) {
	if !result.Done {
		next := *result.Next
		if kb := stepKeyboard(next); kb != nil {
			_, _ = b.tg.SendWithInlineKeyboard(chatID, stepPrompts[next.Step], *kb)
		} else {
			b.replyMarkdown(chatID, stepPrompts[next.Step])
		}
		return
	}

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user after wizard")
		b.reply(chatID, textGenericError)
		return
	}

	b.replyMarkdown(chatID, profileSummary(user, true))
}

func profileSummary(user *models.User, created bool) string {
	height, weight, age := "—", "—", "—"
	if user.Height.Valid {
		height = strconv.FormatInt(user.Height.Int64, 10)
	}
	if user.Weight.Valid {
		weight = strconv.FormatFloat(user.Weight.Float64, 'f', -1, 64)
	}
	if user.Age.Valid {
		age = strconv.FormatInt(user.Age.Int64, 10)
	}

	gender, goal, location := "—", "—", "—"
	if user.Gender.Valid {
		gender = choiceLabel(user.Gender.String)
	}
	if user.Goal.Valid {
		goal = choiceLabel(user.Goal.String)
	}
	if user.Location.Valid {
		location = choiceLabel(user.Location.String)
	}

	body := fmt.Sprintf(
		"📏 Рост: *%s см*\n"+
			"⚖️ Вес: *%s кг*\n"+
			"🎂 Возраст: *%s лет*\n"+
			"👤 Пол: *%s*\n"+
			"🎯 Цель: *%s*\n"+
			"📍 Место: *%s*",
		height, weight, age, gender, goal, location)

	if created {
		return "✅ *Профиль создан!*\n\n" + body +
			"\n\nТеперь я могу составлять персональные программы! 💪\n\n" +
			"Попробуй:\n" +
			"• Составь тренировку на сегодня\n" +
			"• Как правильно делать приседания?\n" +
			"• Дай рецепт на завтрак"
	}
	return body
}

func (b *Bot) handleQuestion(ctx context.Context, update tgbotapi.Update, user *models.User, text string) {
	chatID := update.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	check, err := b.quota.CanAsk(ctx, user.ID)
	if err != nil {
		l.Error().Err(err).Int64("user_id", user.ID).Msg("Quota check failed")
		b.reply(chatID, textGenericError)
		return
	}
	if !check.Allowed {
		if b.metrics != nil {
			b.metrics.QuotaRejections.Inc()
		}
		_, _ = b.tg.SendWithInlineKeyboard(chatID, textLimitReached, subscribeKeyboard())
		return
	}

	b.sendTyping(chatID)

	history, err := b.conversation.ContextFor(ctx, user)
	if err != nil {
		l.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to load chat context")
	}

	// Вопрос оплачивается до похода к модели: сбой ИИ лимит не возвращает.
	// Consume видит остаток до списания, поэтому вызывается на свежем user.
	if err := b.quota.Consume(ctx, user); err != nil {
		l.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to consume question")
	}
	if err := b.conversation.Append(ctx, user.ID, models.RoleUser, text); err != nil {
		l.Warn().Err(err).Msg("Failed to append user message")
	}

	if b.metrics != nil {
		tier := "free"
		if check.Remaining == models.UnlimitedQuestions {
			tier = "premium"
		}
		b.metrics.QuestionsAsked.WithLabelValues(tier).Inc()
	}

	started := time.Now()
	answer, err := b.ai.Ask(ctx, user, history, text)
	if b.metrics != nil {
		b.metrics.AIRequestDuration.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
		l.Error().Err(err).Int64("user_id", user.ID).Msg("AI request failed")
		b.reply(chatID, "⚠️ Не получилось получить ответ. Попробуй еще раз чуть позже.")
		return
	}

	if err := b.conversation.Append(ctx, user.ID, models.RoleAssistant, answer); err != nil {
		l.Warn().Err(err).Msg("Failed to append assistant message")
	}

	footer := ""
	if check.Remaining != models.UnlimitedQuestions {
		remaining := check.Remaining - 1
		if remaining < 0 {
			remaining = 0
		}
		if remaining <= 2 {
			footer = fmt.Sprintf("\n\n💡 Осталось: %d/%d", remaining, b.config.Quota.FreeQuestionsPerDay)
		}
	}

	b.replyMarkdown(chatID, answer+footer)
}

// checkSubscription проверяет членство в обязательном канале. Пустой канал
// в конфиге отключает проверку. Ошибка API трактуется как "подписан", чтобы
// сбой Telegram не запирал бота.
func (b *Bot) checkSubscription(ctx context.Context, userID int64) bool {
	channel := b.config.Telegram.RequiredChannel
	if channel == "" {
		return true
	}

	member, err := b.tg.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             userID,
		},
	})
	if err != nil {
		b.logger.Warn().Err(err).Int64("user_id", userID).Msg("Subscription check failed")
		return true
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

func (b *Bot) sendGate(chatID int64) {
	_, _ = b.tg.SendWithInlineKeyboard(chatID, textSubscribeGate,
		subscribeGateKeyboard(b.config.Telegram.RequiredChannel))
}

func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = b.tg.Request(action)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.tg.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	if _, err := b.tg.SendMarkdown(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}
