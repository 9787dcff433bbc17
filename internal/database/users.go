package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sportbot/internal/models"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const userColumns = `user_id, username, is_premium, premium_until, free_questions, last_reset,
		referral_code, referred_by, referral_used, height, weight, age, gender, goal,
		location, equipment, voice_mode, language, profile_step, created_at`

// CreateUserIfAbsent заводит пользователя и его строку статистики при первом
// контакте. Возвращает true, если пользователь создан этим вызовом.
func (db *DB) CreateUserIfAbsent(ctx context.Context, userID int64, username string) (bool, error) {
	var exists int64
	err := db.QueryRowContext(ctx, `SELECT user_id FROM users WHERE user_id = ?`, userID).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	today := db.Today()

	// Код генерируется случайно; на коллизию UNIQUE отвечаем новым кодом,
	// чужой код никогда не перезаписываем
	for attempt := 0; attempt < 5; attempt++ {
		code := newReferralCode()
		err = db.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO users (user_id, username, free_questions, last_reset, referral_code)
				 VALUES (?, ?, ?, ?, ?)`,
				userID, username, models.DefaultFreeQuestions, today, code,
			); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO stats (user_id) VALUES (?)`, userID)
			return err
		})
		if err == nil {
			db.logger.Info().Int64("user_id", userID).Msg("Новый пользователь")
			return true, nil
		}
		if isUniqueViolation(err) {
			// Либо гонка двух первых контактов, либо коллизия кода.
			// Гонку закрывает повторная проверка существования.
			if lookupErr := db.QueryRowContext(ctx,
				`SELECT user_id FROM users WHERE user_id = ?`, userID).Scan(&exists); lookupErr == nil {
				return false, nil
			}
			continue
		}
		return false, fmt.Errorf("failed to create user: %w", err)
	}

	return false, ErrCodeCollision
}

func newReferralCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:models.ReferralCodeLen]
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	return db.queryUser(ctx, query, userID)
}

// GetUserByReferralCode возвращает владельца кода или ErrCodeNotFound.
func (db *DB) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = ?`
	user, err := db.queryUser(ctx, query, code)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrCodeNotFound
	}
	return user, err
}

func (db *DB) queryUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.IsPremium, &user.PremiumUntil,
		&user.FreeQuestions, &user.LastReset, &user.ReferralCode,
		&user.ReferredBy, &user.ReferralUsed, &user.Height, &user.Weight,
		&user.Age, &user.Gender, &user.Goal, &user.Location, &user.Equipment,
		&user.VoiceMode, &user.Language, &user.ProfileStep, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// profileFields — единственные колонки, которые разрешено писать через
// SetProfileField. Всё остальное меняется типизированными методами.
var profileFields = map[string]bool{
	"height":    true,
	"weight":    true,
	"age":       true,
	"gender":    true,
	"goal":      true,
	"location":  true,
	"equipment": true,
}

func (db *DB) SetProfileField(ctx context.Context, userID int64, field string, value interface{}) error {
	if !profileFields[field] {
		return fmt.Errorf("unknown profile field: %s", field)
	}
	res, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ? WHERE user_id = ?`, field), value, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile field %s: %w", field, err)
	}
	return requireRow(res)
}

// SetProfileFieldAndStep записывает значение шага и переводит пользователя на
// следующий шаг одной транзакцией.
func (db *DB) SetProfileFieldAndStep(ctx context.Context, userID int64, field string, value interface{}, nextStep sql.NullString) error {
	if !profileFields[field] {
		return fmt.Errorf("unknown profile field: %s", field)
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE users SET %s = ?, profile_step = ? WHERE user_id = ?`, field),
			value, nextStep, userID)
		if err != nil {
			return fmt.Errorf("failed to advance profile step: %w", err)
		}
		return requireRow(res)
	})
}

func (db *DB) SetProfileStep(ctx context.Context, userID int64, step sql.NullString) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET profile_step = ? WHERE user_id = ?`, step, userID)
	if err != nil {
		return fmt.Errorf("failed to set profile step: %w", err)
	}
	return requireRow(res)
}

func (db *DB) SetVoiceMode(ctx context.Context, userID int64, enabled bool) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET voice_mode = ? WHERE user_id = ?`, enabled, userID)
	if err != nil {
		return fmt.Errorf("failed to set voice mode: %w", err)
	}
	return requireRow(res)
}

func (db *DB) SetLanguage(ctx context.Context, userID int64, language string) error {
	if !models.ValidLanguage(language) {
		language = models.LangRU
	}
	res, err := db.ExecContext(ctx, `UPDATE users SET language = ? WHERE user_id = ?`, language, userID)
	if err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountUsers возвращает общее число пользователей и число премиум-подписок.
func (db *DB) CountUsers(ctx context.Context) (total, premium int64, err error) {
	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_premium = 1`).Scan(&premium)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count premium users: %w", err)
	}
	return total, premium, nil
}

// GetAllUsers возвращает всех пользователей для экспорта.
func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		err := rows.Scan(
			&u.ID, &u.Username, &u.IsPremium, &u.PremiumUntil,
			&u.FreeQuestions, &u.LastReset, &u.ReferralCode,
			&u.ReferredBy, &u.ReferralUsed, &u.Height, &u.Weight,
			&u.Age, &u.Gender, &u.Goal, &u.Location, &u.Equipment,
			&u.VoiceMode, &u.Language, &u.ProfileStep, &u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
