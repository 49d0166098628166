package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ProfileRepository is the profile directory.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	// GetMany resolves all ids in one round trip. Unknown ids are absent from the map.
	GetMany(ctx context.Context, ids []string) (map[string]domain.Profile, error)
	// Upsert creates the profile with role user when missing, otherwise applies fields.
	Upsert(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error)
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error)
}

func profileNotFound(id string) error {
	return apperrors.NewNotFound("profile", map[string]any{"profile_id": id})
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, role, display_name, email, phone, avatar_url, created_at, updated_at`

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id=$1`
	profile, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profileNotFound(id)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (r *profileRepository) GetMany(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	result := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("batch get profiles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result[profile.ID] = *profile
	}
	return result, rows.Err()
}

func (r *profileRepository) Upsert(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error) {
	const query = `
        INSERT INTO profiles (id, role, display_name, email, phone, avatar_url)
        VALUES ($1, 'user', COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''))
        ON CONFLICT (id) DO UPDATE SET
            display_name = COALESCE($2, profiles.display_name),
            email = COALESCE($3, profiles.email),
            phone = COALESCE($4, profiles.phone),
            avatar_url = COALESCE($5, profiles.avatar_url),
            updated_at = NOW()
        RETURNING ` + profileColumns
	profile, err := scanProfile(r.pool.QueryRow(ctx, query,
		id,
		fields.DisplayName,
		fields.Email,
		fields.Phone,
		fields.AvatarURL,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return profile, nil
}

func (r *profileRepository) SetRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error) {
	query := `UPDATE profiles SET role=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + profileColumns
	profile, err := scanProfile(r.pool.QueryRow(ctx, query, role, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profileNotFound(id)
		}
		return nil, fmt.Errorf("set role: %w", err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Role,
		&profile.DisplayName,
		&profile.Email,
		&profile.Phone,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

// InMemoryProfileRepository is the process-local profile directory.
type InMemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
	// batchCalls counts GetMany invocations; tests use it to assert batched joins.
	batchCalls int
}

// NewInMemoryProfileRepository returns an empty directory.
func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{profiles: make(map[string]domain.Profile)}
}

func (r *InMemoryProfileRepository) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, profileNotFound(id)
	}
	return &profile, nil
}

func (r *InMemoryProfileRepository) GetMany(_ context.Context, ids []string) (map[string]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	result := make(map[string]domain.Profile, len(ids))
	for _, id := range ids {
		if profile, ok := r.profiles[id]; ok {
			result[id] = profile
		}
	}
	return result, nil
}

func (r *InMemoryProfileRepository) Upsert(_ context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	profile, ok := r.profiles[id]
	if !ok {
		profile = domain.Profile{ID: id, Role: domain.RoleUser, CreatedAt: now}
	}
	fields.Apply(&profile)
	profile.UpdatedAt = now
	r.profiles[id] = profile
	return &profile, nil
}

func (r *InMemoryProfileRepository) SetRole(_ context.Context, id string, role domain.Role) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, profileNotFound(id)
	}
	profile.Role = role
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[id] = profile
	return &profile, nil
}

// BatchCalls reports how many GetMany calls were served.
func (r *InMemoryProfileRepository) BatchCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.batchCalls
}
