package repository

import (
	"context"
	"sync"
	"time"

	"sportbot/internal/models"
)

type MemoryStateRepository struct {
	settings   sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl: ttl,
	}
}

func (r *MemoryStateRepository) GetSettings(ctx context.Context, userID int64) (*models.Settings, error) {
	val, ok := r.settings.Load(userID)
	if !ok {
		return nil, nil
	}
	return val.(*models.Settings), nil
}

func (r *MemoryStateRepository) SetSettings(ctx context.Context, settings *models.Settings) error {
	r.settings.Store(settings.UserID, settings)
	return nil
}

func (r *MemoryStateRepository) ClearSettings(ctx context.Context, userID int64) error {
	r.settings.Delete(userID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(userID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(userID, entry)
	return entry.count <= limit, nil
}
