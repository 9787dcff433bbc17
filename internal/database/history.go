package database

import (
	"context"
	"database/sql"
	"fmt"

	"sportbot/internal/models"
)

// AppendMessage добавляет сообщение в историю и в той же транзакции вытесняет
// всё, что вышло за окно из keep последних записей. Содержимое усекается до
// maxRunes code points.
func (db *DB) AppendMessage(ctx context.Context, userID int64, role, content string, keep, maxRunes int) error {
	if runes := []rune(content); len(runes) > maxRunes {
		content = string(runes[:maxRunes])
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_history (user_id, role, content) VALUES (?, ?, ?)`,
			userID, role, content); err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chat_history
			 WHERE user_id = ? AND id NOT IN (
			     SELECT id FROM chat_history WHERE user_id = ? ORDER BY id DESC LIMIT ?
			 )`, userID, userID, keep); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		return nil
	})
}

// GetRecentMessages возвращает последние limit сообщений в хронологическом
// порядке (старые первыми).
func (db *DB) GetRecentMessages(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, role, content, timestamp FROM chat_history
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Разворачиваем в хронологический порядок
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ClearHistory удаляет всю историю пользователя. Квота, премиум и профиль не
// затрагиваются.
func (db *DB) ClearHistory(ctx context.Context, userID int64) error {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM chat_history WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
