package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/blob"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestOpenFallsBackToMemory(t *testing.T) {
	cfg := &config.Config{}
	stores, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()

	assert.False(t, stores.Postgres.Enabled())
	assert.False(t, stores.Redis.Enabled())
	assert.IsType(t, &blob.MemoryStore{}, stores.Attachments)
	assert.IsType(t, &blob.MemoryStore{}, stores.Avatars)

	ctx := context.Background()
	c := &domain.Complaint{OwnerID: "u1", Title: "t", Description: "d", Category: "Other"}
	require.NoError(t, stores.Complaints.Create(ctx, c))
	got, err := stores.Complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)

	profile, err := stores.Profiles.Upsert(ctx, "u1", domain.ProfileFields{})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, profile.Role)
}
