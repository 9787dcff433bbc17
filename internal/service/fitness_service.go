package service

import (
	"context"

	"sportbot/internal/config"
	"sportbot/internal/domain"
	"sportbot/internal/events"
	"sportbot/internal/models"

	"github.com/rs/zerolog"
)

// FitnessService объединяет прогресс веса, тренировки и счетчики.
type FitnessService struct {
	store  domain.Store
	config *config.Config
	logger *zerolog.Logger
	events domain.EventPublisher
}

func NewFitnessService(store domain.Store, config *config.Config, logger *zerolog.Logger, publisher domain.EventPublisher) *FitnessService {
	return &FitnessService{
		store:  store,
		config: config,
		logger: logger,
		events: publisher,
	}
}

// WeightLogResult — итог записи веса: дельта к прошлому замеру, если он был.
type WeightLogResult struct {
	Weight   float64
	Delta    float64
	HasDelta bool
}

// LogWeight записывает замер и считает сдвиг относительно предыдущего.
func (s *FitnessService) LogWeight(ctx context.Context, userID int64, weight float64) (WeightLogResult, error) {
	result := WeightLogResult{Weight: weight}

	previous, err := s.store.GetWeightHistory(ctx, userID, 1)
	if err != nil {
		return result, err
	}
	if len(previous) > 0 {
		result.Delta = weight - previous[0].Weight
		result.HasDelta = true
	}

	if err := s.store.AddWeightRecord(ctx, userID, weight); err != nil {
		return result, err
	}
	return result, nil
}

// WeightHistory возвращает последние замеры, новые первыми.
func (s *FitnessService) WeightHistory(ctx context.Context, userID int64, limit int) ([]models.ProgressSample, error) {
	return s.store.GetWeightHistory(ctx, userID, limit)
}

// SaveWorkout сохраняет сгенерированную тренировку и возвращает её id для
// кнопки завершения.
func (s *FitnessService) SaveWorkout(ctx context.Context, userID int64, text string) (int64, error) {
	return s.store.CreateWorkout(ctx, userID, text)
}

// CompleteWorkout отмечает тренировку выполненной. Повторное нажатие кнопки
// счетчик не увеличивает.
func (s *FitnessService) CompleteWorkout(ctx context.Context, userID, workoutID int64) error {
	if err := s.store.CompleteWorkout(ctx, userID, workoutID); err != nil {
		return err
	}

	_ = s.events.PublishJSON(events.EventWorkoutCompleted, map[string]int64{
		"user_id":    userID,
		"workout_id": workoutID,
	})
	return nil
}

// CountRecipe увеличивает счетчик сгенерированных рецептов.
func (s *FitnessService) CountRecipe(ctx context.Context, userID int64) error {
	return s.store.IncrementRecipes(ctx, userID)
}

// Stats возвращает сводку для /stats.
func (s *FitnessService) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	return s.store.GetUserStats(ctx, userID)
}
