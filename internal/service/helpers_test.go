package service

import (
	"context"
	"path/filepath"
	"testing"

	"sportbot/internal/config"
	"sportbot/internal/database"
	"sportbot/internal/events"
	"sportbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Сервисы гоняются против настоящей SQLite: контракт хранилища и так покрыт
// тестами пакета database, здесь проверяется связка.
func newTestEnv(t *testing.T) (*database.DB, *config.Config, *events.EventBus) {
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "service.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Quota.FreeQuestionsPerDay = 5
	cfg.Referral.ReferrerBonusDays = 7
	cfg.Referral.ReferredBonusDays = 0
	cfg.History.Keep = 10
	cfg.History.ContextWindow = 5
	cfg.History.MaxContentRunes = 2000
	cfg.Payments.PremiumDays = 30

	return db, cfg, events.NewEventBus()
}

func createUser(t *testing.T, db *database.DB, id int64) *models.User {
	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, id, "user")
	require.NoError(t, err)
	user, err := db.GetUser(ctx, id)
	require.NoError(t, err)
	return user
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
