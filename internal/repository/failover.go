package repository

import (
	"context"
	"sync/atomic"
	"time"

	"sportbot/internal/domain"
	"sportbot/internal/models"

	"github.com/rs/zerolog"
)

type FailoverStateRepository struct {
	primary   domain.StateRepository
	fallback  domain.StateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) GetSettings(ctx context.Context, userID int64) (*models.Settings, error) {
	if !r.isDown.Load() {
		settings, err := r.primary.GetSettings(ctx, userID)
		if err == nil {
			return settings, nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		settings, err := r.primary.GetSettings(ctx, userID)
		if err == nil {
			r.isDown.Store(false)
			return settings, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetSettings(ctx, userID)
}

func (r *FailoverStateRepository) SetSettings(ctx context.Context, settings *models.Settings) error {
	if !r.isDown.Load() {
		err := r.primary.SetSettings(ctx, settings)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetSettings(ctx, settings)
}

func (r *FailoverStateRepository) ClearSettings(ctx context.Context, userID int64) error {
	if !r.isDown.Load() {
		err := r.primary.ClearSettings(ctx, userID)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.ClearSettings(ctx, userID)
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
