package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB — единственный источник истины. Каждая логическая операция выполняется
// как одна транзакция: commit при успехе, rollback при любой ошибке.
type DB struct {
	*sql.DB
	logger *zerolog.Logger

	// now подменяется в тестах для контроля календарных инвариантов
	now func() time.Time
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// _txlock=immediate: транзакции берут write-lock сразу, конкурирующие
	// писатели выстраиваются в очередь по busy_timeout вместо SQLITE_BUSY
	sqlDB, err := sql.Open("sqlite3", path+"?_busy_timeout=30000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, logger: logger, now: time.Now}

	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := db.ensureColumns(); err != nil {
		return nil, fmt.Errorf("failed to migrate columns: %w", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return db, nil
}

func (db *DB) createTables() error {
	queries := []string{
		// Таблица пользователей
		`CREATE TABLE IF NOT EXISTS users (
            user_id INTEGER PRIMARY KEY,
            username TEXT,
            is_premium INTEGER NOT NULL DEFAULT 0,
            premium_until TEXT,
            free_questions INTEGER NOT NULL DEFAULT 5,
            last_reset TEXT NOT NULL DEFAULT '',
            referral_code TEXT UNIQUE NOT NULL,
            referred_by INTEGER,
            referral_used INTEGER NOT NULL DEFAULT 0,
            height INTEGER,
            weight REAL,
            age INTEGER,
            gender TEXT,
            goal TEXT,
            location TEXT,
            equipment TEXT,
            voice_mode INTEGER NOT NULL DEFAULT 0,
            language TEXT NOT NULL DEFAULT 'ru',
            profile_step TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// История диалога: только вставка и вытеснение из окна
		`CREATE TABLE IF NOT EXISTS chat_history (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS workouts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            workout_text TEXT NOT NULL,
            completed INTEGER NOT NULL DEFAULT 0,
            date DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS progress (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            weight REAL NOT NULL,
            date DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS stats (
            user_id INTEGER PRIMARY KEY,
            total_questions INTEGER NOT NULL DEFAULT 0,
            workouts_completed INTEGER NOT NULL DEFAULT 0,
            recipes_generated INTEGER NOT NULL DEFAULT 0,
            referrals_count INTEGER NOT NULL DEFAULT 0
        )`,

		`CREATE TABLE IF NOT EXISTS payments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            charge_id TEXT NOT NULL,
            amount INTEGER NOT NULL,
            currency TEXT NOT NULL,
            days INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_referral_code ON users(referral_code)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_user_id ON chat_history(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_user_id ON workouts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user_id ON progress(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// ensureColumns добавляет колонки, появившиеся в поздних ревизиях схемы.
// Отсутствующие значения трактуются как "ещё не задано", старые строки
// продолжают работать.
func (db *DB) ensureColumns() error {
	alters := []string{
		`ALTER TABLE users ADD COLUMN referral_used INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE users ADD COLUMN voice_mode INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE users ADD COLUMN language TEXT NOT NULL DEFAULT 'ru'`,
		`ALTER TABLE users ADD COLUMN profile_step TEXT`,
		`ALTER TABLE users ADD COLUMN equipment TEXT`,
	}

	for _, query := range alters {
		if _, err := db.Exec(query); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return err
		}
	}
	return nil
}

// withTx выполняет fn в одной транзакции с гарантированным откатом при ошибке.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Today возвращает текущую календарную дату в формате хранения.
func (db *DB) Today() string {
	return db.now().Format("2006-01-02")
}
