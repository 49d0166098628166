package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const profileCachePrefix = "complaints:profile:"

type cachedProfile struct {
	ID          string      `json:"id"`
	Role        domain.Role `json:"role"`
	DisplayName string      `json:"display_name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	AvatarURL   string      `json:"avatar_url"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// cachedProfileRepository is a read-through Redis cache in front of the directory.
// Redis failures degrade to the inner repository.
type cachedProfileRepository struct {
	inner  ProfileRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProfileRepository wraps inner with a Redis cache. A nil client disables caching.
func NewCachedProfileRepository(inner ProfileRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) ProfileRepository {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedProfileRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *cachedProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	raw, err := r.client.Get(ctx, profileCachePrefix+id).Bytes()
	if err == nil {
		if profile, ok := decodeProfile(raw); ok {
			return profile, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("profile cache read failed", zap.String("profile_id", id), zap.Error(err))
	}

	profile, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, *profile)
	return profile, nil
}

func (r *cachedProfileRepository) GetMany(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	result := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileCachePrefix + id
	}

	misses := ids
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warn("profile cache batch read failed", zap.Int("ids", len(ids)), zap.Error(err))
	} else {
		misses = make([]string, 0, len(ids))
		for i, val := range values {
			str, ok := val.(string)
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			profile, ok := decodeProfile([]byte(str))
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			result[ids[i]] = *profile
		}
	}

	if len(misses) == 0 {
		return result, nil
	}
	loaded, err := r.inner.GetMany(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe := r.client.Pipeline()
	for id, profile := range loaded {
		result[id] = profile
		if payload, err := encodeProfile(profile); err == nil {
			pipe.Set(ctx, profileCachePrefix+id, payload, r.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("profile cache batch write failed", zap.Error(err))
	}
	return result, nil
}

func (r *cachedProfileRepository) Upsert(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error) {
	profile, err := r.inner.Upsert(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return profile, nil
}

func (r *cachedProfileRepository) SetRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error) {
	profile, err := r.inner.SetRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return profile, nil
}

func (r *cachedProfileRepository) store(ctx context.Context, profile domain.Profile) {
	payload, err := encodeProfile(profile)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, profileCachePrefix+profile.ID, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("profile cache write failed", zap.String("profile_id", profile.ID), zap.Error(err))
	}
}

func (r *cachedProfileRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, profileCachePrefix+id).Err(); err != nil {
		r.logger.Warn("profile cache invalidation failed", zap.String("profile_id", id), zap.Error(err))
	}
}

func encodeProfile(p domain.Profile) ([]byte, error) {
	return json.Marshal(cachedProfile{
		ID:          p.ID,
		Role:        p.Role,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Phone:       p.Phone,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
}

func decodeProfile(raw []byte) (*domain.Profile, bool) {
	var c cachedProfile
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return nil, false
	}
	return &domain.Profile{
		ID:          c.ID,
		Role:        c.Role,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		Phone:       c.Phone,
		AvatarURL:   c.AvatarURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, true
}
