package database

import (
	"context"
	"testing"
	"time"

	"sportbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivatePremium(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	until, err := db.ActivatePremium(ctx, 100, 30)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-31", until)

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.True(t, user.IsPremium)
	assert.Equal(t, "2026-03-31", user.PremiumUntil.String)
}

func TestActivatePremium_ExtendsFromFutureDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	_, err = db.ActivatePremium(ctx, 100, 30)
	require.NoError(t, err)

	// Повторная активация продлевает от будущей даты, а не от сегодня
	until, err := db.ActivatePremium(ctx, 100, 7)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-07", until)
}

func TestActivatePremium_NeverMovesBackward(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	_, err = db.ActivatePremium(ctx, 100, 365)
	require.NoError(t, err)

	until, err := db.ActivatePremium(ctx, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, "2027-03-02", until)
}

func TestActivatePremium_ExpiredDateIgnored(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	// Просроченная дата: базой продления служит сегодня
	_, err = db.Exec(`UPDATE users SET premium_until = '2026-01-15' WHERE user_id = 100`)
	require.NoError(t, err)

	until, err := db.ActivatePremium(ctx, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", until)
}

func TestActivatePremium_InvalidInput(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	_, err = db.ActivatePremium(ctx, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = db.ActivatePremium(ctx, 100, -5)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = db.ActivatePremium(ctx, 999, 30)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExtendPremium_UnparseableDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	// Мусор в дате трактуется как отсутствие премиума
	_, err = db.Exec(`UPDATE users SET premium_until = 'garbage' WHERE user_id = 100`)
	require.NoError(t, err)

	until, err := db.ActivatePremium(ctx, 100, 5)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-06", until)
}

func TestRecordPayment(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	payment := &models.Payment{
		UserID:   100,
		ChargeID: "charge-123",
		Amount:   9900,
		Currency: "RUB",
		Days:     30,
	}
	until, err := db.RecordPayment(ctx, payment)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-31", until)
	assert.NotZero(t, payment.ID)

	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.True(t, user.IsPremium)

	payments, err := db.GetPayments(ctx, 100)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "charge-123", payments[0].ChargeID)
	assert.Equal(t, int64(9900), payments[0].Amount)
}

func TestRecordPayment_UnknownUserRollsBack(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	payment := &models.Payment{UserID: 999, ChargeID: "charge-x", Amount: 100, Currency: "RUB", Days: 30}
	_, err := db.RecordPayment(ctx, payment)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Оплата без начисления не должна быть наблюдаема
	payments, err := db.GetPayments(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
