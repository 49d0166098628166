package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type stubLister struct {
	rows      []domain.Complaint
	err       error
	lastScope Scope
}

func (s *stubLister) List(_ context.Context, scope Scope) ([]domain.Complaint, error) {
	s.lastScope = scope
	return s.rows, s.err
}

func actor(id string, role domain.Role) domain.Actor {
	return domain.Actor{ID: id, Role: role}
}

func TestVisibilityOf(t *testing.T) {
	owned := &domain.Complaint{ID: "c1", OwnerID: "u1", Status: domain.StatusPending}

	tests := []struct {
		name  string
		actor domain.Actor
		want  Visibility
	}{
		{"admin writes everything", actor("a1", domain.RoleAdmin), ReadWrite},
		{"staff writes everything", actor("s1", domain.RoleStaff), ReadWrite},
		{"owner reads own", actor("u1", domain.RoleUser), Read},
		{"other user sees nothing", actor("u2", domain.RoleUser), None},
		{"unknown role sees nothing", actor("u1", domain.Role("root")), None},
		{"anonymous sees nothing", actor("", domain.RoleAdmin), None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibilityOf(tt.actor, owned))
		})
	}

	assert.Equal(t, None, VisibilityOf(actor("a1", domain.RoleAdmin), nil))
}

func TestCanEditContent(t *testing.T) {
	pending := &domain.Complaint{OwnerID: "u1", Status: domain.StatusPending}
	resolved := &domain.Complaint{OwnerID: "u1", Status: domain.StatusResolved}
	rejected := &domain.Complaint{OwnerID: "u1", Status: domain.StatusRejected}

	assert.True(t, CanEditContent(actor("u1", domain.RoleUser), pending))
	assert.True(t, CanEditContent(actor("u1", domain.RoleUser), rejected))
	assert.False(t, CanEditContent(actor("u1", domain.RoleUser), resolved))
	assert.False(t, CanEditContent(actor("u2", domain.RoleUser), pending))
	assert.True(t, CanEditContent(actor("s1", domain.RoleStaff), resolved))
}

func TestListScopesUsersToOwnComplaints(t *testing.T) {
	store := &stubLister{rows: []domain.Complaint{
		{ID: "c3", OwnerID: "u1"},
		{ID: "c2", OwnerID: "u2"},
		{ID: "c1", OwnerID: "u1"},
	}}

	got, err := List(context.Background(), actor("u1", domain.RoleUser), store, 0)
	require.NoError(t, err)

	require.NotNil(t, store.lastScope.OwnerID)
	assert.Equal(t, "u1", *store.lastScope.OwnerID)
	require.Len(t, got, 2)
	assert.Equal(t, "c3", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)
}

func TestListGivesPrivilegedActorsEverything(t *testing.T) {
	store := &stubLister{rows: []domain.Complaint{
		{ID: "c2", OwnerID: "u2"},
		{ID: "c1", OwnerID: "u1"},
	}}

	for _, role := range []domain.Role{domain.RoleStaff, domain.RoleAdmin} {
		got, err := List(context.Background(), actor("s1", role), store, 5)
		require.NoError(t, err)
		assert.Nil(t, store.lastScope.OwnerID)
		assert.Equal(t, 5, store.lastScope.Limit)
		assert.Len(t, got, 2)
	}
}

func TestListPropagatesStoreErrors(t *testing.T) {
	store := &stubLister{err: errors.New("db down")}
	_, err := List(context.Background(), actor("u1", domain.RoleUser), store, 0)
	assert.EqualError(t, err, "db down")
}
