package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sportbot/internal/models"
)

// ActivatePremium продлевает премиум на days дней. Это всегда продление, а не
// перезапись: базой служит максимум из сегодняшней даты и текущей даты
// окончания, поэтому повторная активация никогда не двигает дату назад.
func (db *DB) ActivatePremium(ctx context.Context, userID int64, days int) (string, error) {
	if days <= 0 {
		return "", ErrInvalidDays
	}

	var until string
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var current sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT premium_until FROM users WHERE user_id = ?`, userID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read premium date: %w", err)
		}

		until = extendPremium(current, db.now(), days)
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET is_premium = 1, premium_until = ? WHERE user_id = ?`,
			until, userID)
		if err != nil {
			return fmt.Errorf("failed to activate premium: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	db.logger.Info().Int64("user_id", userID).Int("days", days).Str("until", until).
		Msg("Премиум активирован")
	return until, nil
}

// extendPremium считает новую дату окончания. Нечитаемая сохраненная дата
// трактуется как отсутствие премиума.
func extendPremium(current sql.NullString, now time.Time, days int) string {
	base := now
	if current.Valid && current.String != "" {
		if parsed, err := time.Parse(models.DateLayout, current.String); err == nil && parsed.After(base) {
			base = parsed
		}
	}
	return base.AddDate(0, 0, days).Format(models.DateLayout)
}

// RecordPayment сохраняет успешную оплату и активирует премиум одной
// транзакцией: оплата без начисления не должна быть наблюдаема.
func (db *DB) RecordPayment(ctx context.Context, payment *models.Payment) (string, error) {
	if payment.Days <= 0 {
		return "", ErrInvalidDays
	}

	var until string
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO payments (user_id, charge_id, amount, currency, days)
			 VALUES (?, ?, ?, ?, ?)`,
			payment.UserID, payment.ChargeID, payment.Amount, payment.Currency, payment.Days)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		if payment.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get payment id: %w", err)
		}

		var current sql.NullString
		err = tx.QueryRowContext(ctx,
			`SELECT premium_until FROM users WHERE user_id = ?`, payment.UserID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read premium date: %w", err)
		}

		until = extendPremium(current, db.now(), payment.Days)
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET is_premium = 1, premium_until = ? WHERE user_id = ?`,
			until, payment.UserID)
		if err != nil {
			return fmt.Errorf("failed to activate premium: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	db.logger.Info().Int64("user_id", payment.UserID).Str("charge_id", payment.ChargeID).
		Int("days", payment.Days).Msg("Оплата зачислена")
	return until, nil
}

// GetPayments возвращает оплаты пользователя, новые первыми.
func (db *DB) GetPayments(ctx context.Context, userID int64) ([]*models.Payment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, charge_id, amount, currency, days, created_at
		 FROM payments WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.ChargeID, &p.Amount, &p.Currency, &p.Days, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
