package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"sportbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	created, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)
	assert.True(t, created)

	// Повторный контакт — не создание
	created, err = db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.DefaultFreeQuestions, user.FreeQuestions)
	assert.Len(t, user.ReferralCode, models.ReferralCodeLen)
	assert.False(t, user.IsPremium)
	assert.Equal(t, db.Today(), user.LastReset)

	// Строка статистики заводится вместе с пользователем
	stat, err := db.GetStat(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, stat.TotalQuestions)
}

func TestCreateUserIfAbsent_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan bool, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			created, err := db.CreateUserIfAbsent(ctx, 200, "bob")
			assert.NoError(t, err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	createdCount := 0
	for created := range results {
		if created {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetUser(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByReferralCode(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	owner, err := db.GetUser(ctx, 100)
	require.NoError(t, err)

	found, err := db.GetUserByReferralCode(ctx, owner.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, int64(100), found.ID)

	_, err = db.GetUserByReferralCode(ctx, "nosuchcode")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestSetProfileField(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	require.NoError(t, db.SetProfileField(ctx, 100, "height", 180))
	require.NoError(t, db.SetProfileField(ctx, 100, "goal", "lose_fat"))

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(180), user.Height.Int64)
	assert.Equal(t, "lose_fat", user.Goal.String)

	// Произвольные колонки через профиль не пишутся
	err = db.SetProfileField(ctx, 100, "is_premium", 1)
	assert.Error(t, err)

	// Несуществующий пользователь
	err = db.SetProfileField(ctx, 999, "height", 180)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetProfileFieldAndStep(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	next := sql.NullString{String: "weight", Valid: true}
	require.NoError(t, db.SetProfileFieldAndStep(ctx, 100, "height", 180, next))

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(180), user.Height.Int64)
	assert.Equal(t, "weight", user.ProfileStep.String)

	// Последний шаг сбрасывает указатель
	require.NoError(t, db.SetProfileFieldAndStep(ctx, 100, "location", "home", sql.NullString{}))
	user, err = db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.False(t, user.ProfileStep.Valid)
}

func TestSetVoiceModeAndLanguage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	require.NoError(t, db.SetVoiceMode(ctx, 100, true))
	require.NoError(t, db.SetLanguage(ctx, 100, models.LangKO))

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.True(t, user.VoiceMode)
	assert.Equal(t, models.LangKO, user.Language)

	// Неизвестный язык схлопывается в русский
	require.NoError(t, db.SetLanguage(ctx, 100, "xx"))
	user, err = db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, models.LangRU, user.Language)
}

func TestCountUsers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		_, err := db.CreateUserIfAbsent(ctx, id, "user")
		require.NoError(t, err)
	}
	_, err := db.ActivatePremium(ctx, 2, 30)
	require.NoError(t, err)

	total, premium, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), premium)
}

func TestGetAllUsers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		_, err := db.CreateUserIfAbsent(ctx, id, "user")
		require.NoError(t, err)
	}

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
