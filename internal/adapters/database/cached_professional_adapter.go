package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/providers"
	"github.com/agendasaude/backend/internal/domain/repositories"
)

// CachedProfessionalAdapter wraps ProfessionalAdapter with caching.
// Professionals are read on every booking and free-slot request but
// change rarely, so reads are served from cache and every write
// invalidates the affected keys.
type CachedProfessionalAdapter struct {
	adapter repositories.ProfessionalRepository
	cache   providers.CacheProvider
}

// NewCachedProfessionalAdapter creates a new cached professional adapter
func NewCachedProfessionalAdapter(adapter repositories.ProfessionalRepository, cache providers.CacheProvider) repositories.ProfessionalRepository {
	return &CachedProfessionalAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	professionalByIDTTL = 300
	professionalListTTL = 120
)

func professionalCacheKey(id int64) string {
	return fmt.Sprintf("professional:%d", id)
}

const professionalListCacheKey = "professionals:list"

// Create creates a new professional and invalidates the list cache
func (a *CachedProfessionalAdapter) Create(ctx context.Context, professional *entities.Professional) error {
	if err := a.adapter.Create(ctx, professional); err != nil {
		return err
	}
	a.invalidate(ctx, professionalListCacheKey)
	return nil
}

// GetByID retrieves a professional by ID with caching
func (a *CachedProfessionalAdapter) GetByID(ctx context.Context, id int64) (*entities.Professional, error) {
	cacheKey := professionalCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var professional entities.Professional
		if err := json.Unmarshal(cached, &professional); err == nil {
			return &professional, nil
		}
		log.Warn().Str("key", cacheKey).Msg("failed to unmarshal cached professional")
	}

	professional, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(professional); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, professionalByIDTTL); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache professional")
		}
	}

	return professional, nil
}

// List retrieves all professionals with caching
func (a *CachedProfessionalAdapter) List(ctx context.Context) ([]*entities.Professional, error) {
	if cached, err := a.cache.Get(ctx, professionalListCacheKey); err == nil {
		var professionals []*entities.Professional
		if err := json.Unmarshal(cached, &professionals); err == nil {
			return professionals, nil
		}
		log.Warn().Msg("failed to unmarshal cached professional list")
	}

	professionals, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(professionals); err == nil {
		if err := a.cache.Set(ctx, professionalListCacheKey, data, professionalListTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache professional list")
		}
	}

	return professionals, nil
}

// Update updates a professional and invalidates its cache entries
func (a *CachedProfessionalAdapter) Update(ctx context.Context, professional *entities.Professional) error {
	if err := a.adapter.Update(ctx, professional); err != nil {
		return err
	}
	a.invalidate(ctx, professionalCacheKey(professional.ID), professionalListCacheKey)
	return nil
}

// Delete deletes a professional and invalidates its cache entries
func (a *CachedProfessionalAdapter) Delete(ctx context.Context, id int64) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, professionalCacheKey(id), professionalListCacheKey)
	return nil
}

func (a *CachedProfessionalAdapter) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := a.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to invalidate cache entry")
		}
	}
}
