package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sportbot/internal/models"
)

// AddWeightRecord добавляет замер веса и обновляет текущий вес в профиле
// одной транзакцией. Замеры никогда не изменяются задним числом.
func (db *DB) AddWeightRecord(ctx context.Context, userID int64, weight float64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO progress (user_id, weight) VALUES (?, ?)`,
			userID, weight); err != nil {
			return fmt.Errorf("failed to add weight record: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET weight = ? WHERE user_id = ?`, weight, userID); err != nil {
			return fmt.Errorf("failed to update profile weight: %w", err)
		}
		return nil
	})
}

// GetWeightHistory возвращает последние замеры, новые первыми.
func (db *DB) GetWeightHistory(ctx context.Context, userID int64, limit int) ([]models.ProgressSample, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, weight, date FROM progress
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get weight history: %w", err)
	}
	defer rows.Close()

	var samples []models.ProgressSample
	for rows.Next() {
		var s models.ProgressSample
		if err := rows.Scan(&s.ID, &s.UserID, &s.Weight, &s.Date); err != nil {
			return nil, fmt.Errorf("failed to scan weight record: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// CreateWorkout сохраняет сгенерированную тренировку.
func (db *DB) CreateWorkout(ctx context.Context, userID int64, text string) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO workouts (user_id, workout_text) VALUES (?, ?)`, userID, text)
	if err != nil {
		return 0, fmt.Errorf("failed to create workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get workout id: %w", err)
	}
	return id, nil
}

// CompleteWorkout отмечает тренировку выполненной и увеличивает счетчик
// выполненных тренировок одной транзакцией. Тренировка ищется по паре
// id+владелец: чужой или повторный callback счетчик не трогает.
func (db *DB) CompleteWorkout(ctx context.Context, userID, workoutID int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE workouts SET completed = 1
			 WHERE id = ? AND user_id = ? AND completed = 0`, workoutID, userID)
		if err != nil {
			return fmt.Errorf("failed to complete workout: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check completed workout: %w", err)
		}
		if affected == 0 {
			return ErrWorkoutNotFound
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE stats SET workouts_completed = workouts_completed + 1
			 WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to increment workout stat: %w", err)
		}
		return nil
	})
}

// IncrementQuestions увеличивает только счетчик заданных вопросов. Для
// премиум-пользователей лимит не списывается.
func (db *DB) IncrementQuestions(ctx context.Context, userID int64) error {
	if _, err := db.ExecContext(ctx,
		`UPDATE stats SET total_questions = total_questions + 1
		 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to increment question stat: %w", err)
	}
	return nil
}

// IncrementRecipes увеличивает счетчик сгенерированных рецептов.
func (db *DB) IncrementRecipes(ctx context.Context, userID int64) error {
	if _, err := db.ExecContext(ctx,
		`UPDATE stats SET recipes_generated = recipes_generated + 1
		 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to increment recipes stat: %w", err)
	}
	return nil
}

// GetStat возвращает счетчики пользователя.
func (db *DB) GetStat(ctx context.Context, userID int64) (*models.Stat, error) {
	var s models.Stat
	err := db.QueryRowContext(ctx,
		`SELECT user_id, total_questions, workouts_completed, recipes_generated, referrals_count
		 FROM stats WHERE user_id = ?`, userID).Scan(
		&s.UserID, &s.TotalQuestions, &s.WorkoutsCompleted, &s.RecipesGenerated, &s.ReferralsCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &s, nil
}

// GetUserStats — сводка для /stats одной выборкой по users и stats.
func (db *DB) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var s models.UserStats
	err := db.QueryRowContext(ctx,
		`SELECT u.free_questions, u.is_premium,
		        COALESCE(s.total_questions, 0), COALESCE(s.workouts_completed, 0),
		        COALESCE(s.recipes_generated, 0), COALESCE(s.referrals_count, 0)
		 FROM users u LEFT JOIN stats s ON u.user_id = s.user_id
		 WHERE u.user_id = ?`, userID).Scan(
		&s.FreeQuestions, &s.IsPremium, &s.TotalQuestions,
		&s.WorkoutsCompleted, &s.RecipesGenerated, &s.ReferralsCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &s, nil
}
