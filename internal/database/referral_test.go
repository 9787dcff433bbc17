package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReferralPair(t *testing.T, db *DB) (referrerCode string) {
	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 1, "referrer")
	require.NoError(t, err)
	_, err = db.CreateUserIfAbsent(ctx, 2, "invited")
	require.NoError(t, err)

	referrer, err := db.GetUser(ctx, 1)
	require.NoError(t, err)
	return referrer.ReferralCode
}

func TestRedeemReferral(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	code := setupReferralPair(t, db)

	referrerID, err := db.RedeemReferral(ctx, 2, code, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), referrerID)

	// Пригласивший получил бонусные дни
	referrer, err := db.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.True(t, referrer.IsPremium)
	assert.Equal(t, "2026-03-08", referrer.PremiumUntil.String)

	stat, err := db.GetStat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.ReferralsCount)

	// Приглашенный помечен, но без бонуса (referredBonusDays = 0)
	invited, err := db.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.True(t, invited.ReferralUsed)
	assert.Equal(t, int64(1), invited.ReferredBy.Int64)
	assert.False(t, invited.IsPremium)
}

func TestRedeemReferral_ReferredBonus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	code := setupReferralPair(t, db)

	_, err := db.RedeemReferral(ctx, 2, code, 7, 3)
	require.NoError(t, err)

	invited, err := db.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.True(t, invited.IsPremium)
	assert.Equal(t, "2026-03-04", invited.PremiumUntil.String)
}

func TestRedeemReferral_SelfReferral(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	code := setupReferralPair(t, db)

	_, err := db.RedeemReferral(ctx, 1, code, 7, 0)
	assert.ErrorIs(t, err, ErrSelfReferral)
}

func TestRedeemReferral_CodeNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	setupReferralPair(t, db)

	_, err := db.RedeemReferral(ctx, 2, "nosuchcode", 7, 0)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestRedeemReferral_OnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	code := setupReferralPair(t, db)

	_, err := db.CreateUserIfAbsent(ctx, 3, "another")
	require.NoError(t, err)
	another, err := db.GetUser(ctx, 3)
	require.NoError(t, err)

	_, err = db.RedeemReferral(ctx, 2, code, 7, 0)
	require.NoError(t, err)

	// Ни тот же код, ни любой другой второй раз не проходит
	_, err = db.RedeemReferral(ctx, 2, code, 7, 0)
	assert.ErrorIs(t, err, ErrAlreadyReferred)

	_, err = db.RedeemReferral(ctx, 2, another.ReferralCode, 7, 0)
	assert.ErrorIs(t, err, ErrAlreadyReferred)
}

func TestRedeemReferral_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	code := setupReferralPair(t, db)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := db.RedeemReferral(ctx, 2, code, 7, 0)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyReferred)
		}
	}
	assert.Equal(t, 1, successCount)

	// Награда начислена ровно один раз
	stat, err := db.GetStat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.ReferralsCount)
}

func TestRedeemReferral_InvalidBonus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	code := setupReferralPair(t, db)

	_, err := db.RedeemReferral(ctx, 2, code, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidDays)
}
