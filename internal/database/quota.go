package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ResetQuotaIfNewDay восстанавливает дневной лимит, если календарная дата
// сменилась. Повторный вызов в тот же день — no-op: сравнение last_reset
// входит в условие UPDATE, поэтому лимит никогда не пополняется дважды.
func (db *DB) ResetQuotaIfNewDay(ctx context.Context, userID int64, limit int) error {
	today := db.Today()
	_, err := db.ExecContext(ctx,
		`UPDATE users SET free_questions = ?, last_reset = ?
		 WHERE user_id = ? AND last_reset != ?`,
		limit, today, userID, today)
	if err != nil {
		return fmt.Errorf("failed to reset daily quota: %w", err)
	}
	return nil
}

// ConsumeQuestion списывает один бесплатный вопрос и увеличивает счетчик
// заданных вопросов. Декремент защищен предикатом free_questions > 0 и не
// уводит остаток в минус даже при одновременных вызовах; счетчик статистики
// растет безусловно. Обе записи — одна транзакция.
func (db *DB) ConsumeQuestion(ctx context.Context, userID int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET free_questions = free_questions - 1
			 WHERE user_id = ? AND free_questions > 0`, userID); err != nil {
			return fmt.Errorf("failed to consume question: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE stats SET total_questions = total_questions + 1
			 WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to increment question stat: %w", err)
		}
		return nil
	})
}
