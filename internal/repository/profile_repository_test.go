package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func strPtr(s string) *string { return &s }

func TestInMemoryProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryProfileRepository()

	t.Run("upsert provisions users", func(t *testing.T) {
		p, err := repo.Upsert(ctx, "u1", domain.ProfileFields{DisplayName: strPtr("Ana"), Email: strPtr("ana@example.com")})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, p.Role)
		assert.Equal(t, "Ana", p.DisplayName)
	})

	t.Run("upsert keeps untouched fields", func(t *testing.T) {
		p, err := repo.Upsert(ctx, "u1", domain.ProfileFields{Phone: strPtr("+1 555 0100")})
		require.NoError(t, err)
		assert.Equal(t, "Ana", p.DisplayName)
		assert.Equal(t, "+1 555 0100", p.Phone)
	})

	t.Run("set role on unknown profile", func(t *testing.T) {
		_, err := repo.SetRole(ctx, "ghost", domain.RoleAdmin)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("batch lookup omits unknown ids", func(t *testing.T) {
		_, err := repo.Upsert(ctx, "s1", domain.ProfileFields{DisplayName: strPtr("Sam")})
		require.NoError(t, err)
		_, err = repo.SetRole(ctx, "s1", domain.RoleStaff)
		require.NoError(t, err)

		got, err := repo.GetMany(ctx, []string{"u1", "s1", "ghost"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, domain.RoleStaff, got["s1"].Role)
		assert.Equal(t, 1, repo.BatchCalls())
	})
}
