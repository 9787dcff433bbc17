package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RedeemReferral погашает реферальный код для нового пользователя. Все шаги —
// проверка повторного погашения, поиск владельца, отметка использования,
// начисление бонусов и счетчик рефералов — выполняются одной транзакцией:
// два одновременных погашения не могут дважды наградить пригласившего.
//
// Ожидаемые отказы (ErrCodeNotFound, ErrSelfReferral, ErrAlreadyReferred)
// возвращаются как есть; сервис превращает их в булев результат.
func (db *DB) RedeemReferral(ctx context.Context, newUserID int64, code string, referrerBonusDays, referredBonusDays int) (int64, error) {
	if referrerBonusDays <= 0 {
		return 0, ErrInvalidDays
	}

	var referrerID int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		// Двойная проверка: флаг и ссылка должны быть пустыми оба.
		// Если они расходятся, считаем код уже использованным.
		var used bool
		var referredBy sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT referral_used, referred_by FROM users WHERE user_id = ?`,
			newUserID).Scan(&used, &referredBy)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read referral state: %w", err)
		}
		if used || referredBy.Valid {
			return ErrAlreadyReferred
		}

		err = tx.QueryRowContext(ctx,
			`SELECT user_id FROM users WHERE referral_code = ?`, code).Scan(&referrerID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCodeNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up referral code: %w", err)
		}
		if referrerID == newUserID {
			return ErrSelfReferral
		}

		// Отметка погашения защищена теми же предикатами, что и чтение выше:
		// параллельная транзакция не пройдет условие второй раз
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET referred_by = ?, referral_used = 1
			 WHERE user_id = ? AND referral_used = 0 AND referred_by IS NULL`,
			referrerID, newUserID)
		if err != nil {
			return fmt.Errorf("failed to mark referral used: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrAlreadyReferred
		}

		if err := extendPremiumTx(ctx, tx, db, referrerID, referrerBonusDays); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE stats SET referrals_count = referrals_count + 1
			 WHERE user_id = ?`, referrerID); err != nil {
			return fmt.Errorf("failed to increment referrals count: %w", err)
		}

		// Бонус приглашенному — политика развертывания, по умолчанию 0
		if referredBonusDays > 0 {
			if err := extendPremiumTx(ctx, tx, db, newUserID, referredBonusDays); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info().Int64("user_id", newUserID).Int64("referrer_id", referrerID).
		Msg("Реферальный код погашен")
	return referrerID, nil
}

// extendPremiumTx — продление премиума внутри уже открытой транзакции.
func extendPremiumTx(ctx context.Context, tx *sql.Tx, db *DB, userID int64, days int) error {
	var current sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT premium_until FROM users WHERE user_id = ?`, userID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read premium date: %w", err)
	}

	until := extendPremium(current, db.now(), days)
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET is_premium = 1, premium_until = ? WHERE user_id = ?`,
		until, userID); err != nil {
		return fmt.Errorf("failed to extend premium: %w", err)
	}
	return nil
}
