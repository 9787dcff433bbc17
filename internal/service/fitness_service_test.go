package service

import (
	"context"
	"testing"

	"sportbot/internal/database"
	"sportbot/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitnessService_LogWeight(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewFitnessService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)

	// Первый замер: дельты нет
	res, err := svc.LogWeight(ctx, 100, 85.0)
	require.NoError(t, err)
	assert.False(t, res.HasDelta)

	res, err = svc.LogWeight(ctx, 100, 83.5)
	require.NoError(t, err)
	assert.True(t, res.HasDelta)
	assert.InDelta(t, -1.5, res.Delta, 0.001)

	history, err := svc.WeightHistory(ctx, 100, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestFitnessService_WorkoutLifecycle(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewFitnessService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	var published []*events.Event
	bus.Subscribe(events.EventWorkoutCompleted, func(ev *events.Event) error {
		published = append(published, ev)
		return nil
	})

	createUser(t, db, 100)

	id, err := svc.SaveWorkout(ctx, 100, "1. Отжимания 3x15")
	require.NoError(t, err)

	require.NoError(t, svc.CompleteWorkout(ctx, 100, id))
	require.Len(t, published, 1)

	// Повторная отметка отклоняется
	err = svc.CompleteWorkout(ctx, 100, id)
	assert.ErrorIs(t, err, database.ErrWorkoutNotFound)
}

func TestFitnessService_Stats(t *testing.T) {
	db, cfg, bus := newTestEnv(t)
	svc := NewFitnessService(db, cfg, testLogger(), bus)
	ctx := context.Background()

	createUser(t, db, 100)
	require.NoError(t, svc.CountRecipe(ctx, 100))

	stats, err := svc.Stats(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RecipesGenerated)
}
