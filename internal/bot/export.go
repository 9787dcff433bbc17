package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

// handleExportCommand выгружает пользователей и их счетчики в Excel и
// отправляет файл админу.
func (b *Bot) handleExportCommand(ctx context.Context, update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !b.isAdmin(userID) {
		return
	}

	filePath, err := b.exportToExcel(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Export failed")
		b.reply(chatID, textGenericError)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	if _, err := b.tg.Send(doc); err != nil {
		b.logger.Error().Err(err).Str("file_path", filePath).Msg("Failed to send export")
		b.reply(chatID, textGenericError)
	}
}

// exportToExcel создает Excel файл с данными о пользователях
func (b *Bot) exportToExcel(ctx context.Context) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	users, err := b.store.GetAllUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting users: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Пользователи"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Username", "Premium", "Premium до", "Вопросов осталось",
		"Реф. код", "Приглашен", "Рост", "Вес", "Цель", "Язык", "Создан"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	for row, user := range users {
		values := []interface{}{
			user.ID,
			user.Username,
			user.IsPremium,
			user.PremiumUntil.String,
			user.FreeQuestions,
			user.ReferralCode,
			user.ReferredBy.Int64,
			user.Height.Int64,
			user.Weight.Float64,
			user.Goal.String,
			user.Language,
			user.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "L", 18)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A1", "L1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("users_%s.xlsx", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("users", len(users)).Msg("Excel file created")
	return filePath, nil
}
