package database

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"sportbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendMessage_WindowPruning(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		err := db.AppendMessage(ctx, 100, role, fmt.Sprintf("message %d", i), 10, 2000)
		require.NoError(t, err)
	}

	messages, err := db.GetRecentMessages(ctx, 100, 100)
	require.NoError(t, err)
	require.Len(t, messages, 10)

	// Выжили именно последние 10, в хронологическом порядке
	assert.Equal(t, "message 5", messages[0].Content)
	assert.Equal(t, "message 14", messages[9].Content)
}

func TestGetRecentMessages_LimitAndOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		err := db.AppendMessage(ctx, 100, models.RoleUser, fmt.Sprintf("m%d", i), 10, 2000)
		require.NoError(t, err)
	}

	messages, err := db.GetRecentMessages(ctx, 100, 5)
	require.NoError(t, err)
	require.Len(t, messages, 5)
	assert.Equal(t, "m3", messages[0].Content)
	assert.Equal(t, "m7", messages[4].Content)
}

func TestAppendMessage_RuneTruncation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	// Кириллица: усечение по code points, не по байтам
	long := strings.Repeat("ы", 2100)
	err = db.AppendMessage(ctx, 100, models.RoleUser, long, 10, 2000)
	require.NoError(t, err)

	messages, err := db.GetRecentMessages(ctx, 100, 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, 2000, len([]rune(messages[0].Content)))
}

func TestHistory_IsolatedPerUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)
	_, err = db.CreateUserIfAbsent(ctx, 200, "bob")
	require.NoError(t, err)

	require.NoError(t, db.AppendMessage(ctx, 100, models.RoleUser, "alice says", 10, 2000))
	require.NoError(t, db.AppendMessage(ctx, 200, models.RoleUser, "bob says", 10, 2000))

	messages, err := db.GetRecentMessages(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "alice says", messages[0].Content)
}

func TestClearHistory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	_, err := db.CreateUserIfAbsent(ctx, 100, "alice")
	require.NoError(t, err)

	require.NoError(t, db.AppendMessage(ctx, 100, models.RoleUser, "hello", 10, 2000))
	require.NoError(t, db.ConsumeQuestion(ctx, 100))
	require.NoError(t, db.ClearHistory(ctx, 100))

	messages, err := db.GetRecentMessages(ctx, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Лимит и статистика очисткой не затрагиваются
	user, err := db.GetUser(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, user.FreeQuestions)

	stat, err := db.GetStat(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.TotalQuestions)
}
