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

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) {
	command := update.Message.Command()

	if b.metrics != nil {
		b.metrics.CommandsProcessed.WithLabelValues(command).Inc()
	}

	switch command {
	case "start":
		b.handleStart(ctx, update)
	case "help":
		b.replyMarkdown(update.Message.Chat.ID, textHelp)
	case "profile":
		b.handleProfileCommand(ctx, update)
	case "settings":
		b.handleSettingsCommand(ctx, update)
	case "stats":
		b.handleStatsCommand(ctx, update)
	case "referral":
		b.handleReferralCommand(ctx, update)
	case "clear":
		b.handleClearCommand(ctx, update)
	case "admin":
		b.handleAdminCommand(ctx, update)
	case "give_premium":
		b.handleGivePremiumCommand(ctx, update)
	case "export":
		b.handleExportCommand(ctx, update)
	default:
		b.reply(update.Message.Chat.ID, "Неизвестная команда. /help")
	}
}

func (b *Bot) handleStart(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	// /start сбрасывает недописанную анкету
	if err := b.store.SetProfileStep(ctx, userID, nullNone()); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to reset profile step")
	}

	if !b.checkSubscription(ctx, userID) && !b.isAdmin(userID) {
		b.sendGate(chatID)
		return
	}

	// Аргумент deep-link — реферальный код
	if code := strings.TrimSpace(update.Message.CommandArguments()); code != "" {
		if _, redeemed, err := b.referrals.Redeem(ctx, userID, code); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("Referral redeem failed")
		} else if redeemed {
			if b.metrics != nil {
				b.metrics.ReferralsRedeemed.Inc()
			}
			b.reply(chatID, textReferralBonus)
		}
	}

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user")
		b.reply(chatID, textGenericError)
		return
	}

	profileStatus := "❌ Профиль не заполнен"
	if user.HasProfile() {
		profileStatus = "✅ Профиль заполнен"
	}

	greeting := fmt.Sprintf(
		"💪 Привет, %s!\n\n"+
			"Я *Murasaki Sport* — твой AI-тренер!\n\n"+
			"📋 %s\n\n"+
			"*Я могу:*\n"+
			"• Составлять программы тренировок\n"+
			"• Объяснять технику упражнений\n"+
			"• Давать рецепты с КБЖУ\n\n"+
			"👇 Выбери действие или задай вопрос",
		update.Message.From.FirstName, profileStatus)

	msg := tgbotapi.NewMessage(chatID, greeting)
	msg.ParseMode = models.ParseModeMarkdown
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := b.tg.Send(msg); err != nil {
		l.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send greeting")
	}
}

func (b *Bot) handleProfileCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if !user.HasProfile() {
		_, _ = b.tg.SendWithInlineKeyboard(chatID, textNoProfile, setupProfileKeyboard())
		return
	}

	tier := "🆓 Free"
	if b.entitlements.IsPremiumNow(user) {
		tier = "💎 Premium"
	}

	b.replyMarkdown(chatID, fmt.Sprintf("👤 *Твой профиль* (%s)\n\n%s", tier, profileSummary(user, false)))
}

func (b *Bot) handleSettingsCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	settings, err := b.settings.Get(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	modeText := "📝 Текст"
	if settings.VoiceMode {
		modeText = "🎙️ Голос"
	}
	langNames := map[string]string{
		models.LangRU: "🇷🇺 Русский",
		models.LangEN: "🇺🇸 English",
		models.LangKO: "🇰🇷 한국어",
	}
	langName, ok := langNames[settings.Language]
	if !ok {
		langName = langNames[models.LangRU]
	}

	text := fmt.Sprintf("⚙️ *Настройки*\n\n📢 Режим: *%s*\n🌍 Язык: *%s*", modeText, langName)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeMarkdown
	msg.ReplyMarkup = settingsKeyboard(settings)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleStatsCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	stats, err := b.fitness.Stats(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	status := fmt.Sprintf("🆓 Free (%d/%d)", stats.FreeQuestions, b.config.Quota.FreeQuestionsPerDay)
	if stats.IsPremium {
		status = "💎 Premium"
	}

	b.replyMarkdown(chatID, fmt.Sprintf(
		"📊 *Статистика*\n\n"+
			"Статус: %s\n\n"+
			"💬 Вопросов: *%d*\n"+
			"💪 Тренировок: *%d*\n"+
			"🍽️ Рецептов: *%d*\n"+
			"👥 Рефералов: *%d*",
		status, stats.TotalQuestions, stats.WorkoutsCompleted,
		stats.RecipesGenerated, stats.ReferralsCount))
}

func (b *Bot) handleReferralCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	link := b.referrals.Link(b.tg.GetSelf().UserName, user.ReferralCode)
	b.replyMarkdown(chatID, fmt.Sprintf(
		"👥 *Реферальная программа*\n\n"+
			"🎁 *+%d дней Premium* за друга!\n\n"+
			"Твоя ссылка:\n`%s`",
		b.config.Referral.ReferrerBonusDays, link))
}

func (b *Bot) handleClearCommand(ctx context.Context, update tgbotapi.Update) {
	if err := b.conversation.Clear(ctx, update.Message.From.ID); err != nil {
		b.reply(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	b.reply(update.Message.Chat.ID, textHistoryCleared)
}

func (b *Bot) handleAdminCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !b.isAdmin(userID) {
		b.replyMarkdown(chatID, fmt.Sprintf("❌ Нет доступа.\n\nТвой ID: `%d`", userID))
		return
	}

	total, premium, err := b.store.CountUsers(ctx)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.UsersTotal.Set(float64(total))
	}

	b.replyMarkdown(chatID, fmt.Sprintf(
		"🔧 *Админ*\n\n"+
			"👥 Юзеров: %d\n"+
			"💎 Premium: %d\n\n"+
			"`/give_premium ID 30`\n"+
			"`/export`",
		total, premium))
}

func (b *Bot) handleGivePremiumCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !b.isAdmin(userID) {
		return
	}

	args := strings.Fields(update.Message.CommandArguments())
	if len(args) < 1 {
		b.replyMarkdown(chatID, "`/give_premium ID [дни]`")
		return
	}

	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(chatID, "❌ Некорректный ID")
		return
	}

	days := b.config.Payments.PremiumDays
	if len(args) > 1 {
		if parsed, err := strconv.Atoi(args[1]); err == nil {
			days = parsed
		}
	}

	until, err := b.entitlements.Activate(ctx, target, days, "admin")
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.PremiumActivations.WithLabelValues("admin").Inc()
	}
	b.reply(chatID, fmt.Sprintf("✅ Premium %d дней для %d (до %s)", days, target, until))
}
