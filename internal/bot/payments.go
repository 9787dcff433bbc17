package bot

import (
	"context"
	"fmt"

	"sportbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const invoicePayload = "premium"

func (b *Bot) sendInvoice(ctx context.Context, chatID int64) {
	if b.config.Payments.ProviderToken == "" {
		b.reply(chatID, textPaymentsOff)
		return
	}

	invoice := tgbotapi.NewInvoice(chatID,
		fmt.Sprintf("Premium %d дней", b.config.Payments.PremiumDays),
		"Безлимит",
		invoicePayload,
		b.config.Payments.ProviderToken,
		"",
		b.config.Payments.Currency,
		[]tgbotapi.LabeledPrice{{Label: "Premium", Amount: b.config.Payments.PriceAmount}})

	if _, err := b.tg.Request(invoice); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send invoice")
		b.reply(chatID, textGenericError)
	}
}

// handlePreCheckout подтверждает оплату. Отклоняется только чужой payload.
func (b *Bot) handlePreCheckout(ctx context.Context, update tgbotapi.Update) {
	query := update.PreCheckoutQuery

	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: query.ID,
		OK:                 query.InvoicePayload == invoicePayload,
	}
	if !answer.OK {
		answer.ErrorMessage = "Неизвестный платеж"
	}

	if _, err := b.tg.Request(answer); err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer pre-checkout query")
	}
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, update tgbotapi.Update) {
	payment := update.Message.SuccessfulPayment
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	l := zerolog.Ctx(ctx)

	if _, err := b.store.CreateUserIfAbsent(ctx, userID, update.Message.From.UserName); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to ensure user")
	}

	until, err := b.entitlements.RecordPayment(ctx, &models.Payment{
		UserID:   userID,
		ChargeID: payment.TelegramPaymentChargeID,
		Amount:   int64(payment.TotalAmount),
		Currency: payment.Currency,
		Days:     b.config.Payments.PremiumDays,
	})
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("Failed to record payment")
		b.reply(chatID, "⚠️ Оплата получена, но начисление не прошло. Напиши в поддержку.")
		return
	}

	if b.metrics != nil {
		b.metrics.PremiumActivations.WithLabelValues("payment").Inc()
	}

	l.Info().Int64("user_id", userID).Str("charge_id", payment.TelegramPaymentChargeID).
		Str("until", until).Msg("Оплата обработана")
	b.reply(chatID, fmt.Sprintf("🎉 Premium активирован на %d дней!", b.config.Payments.PremiumDays))
}
