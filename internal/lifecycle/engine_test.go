package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func strPtr(s string) *string                { return &s }

var (
	owner  = domain.Actor{ID: "u1", Role: domain.RoleUser}
	other  = domain.Actor{ID: "u2", Role: domain.RoleUser}
	staff  = domain.Actor{ID: "s1", Role: domain.RoleStaff}
	staff2 = domain.Actor{ID: "s2", Role: domain.RoleStaff}
	admin  = domain.Actor{ID: "a1", Role: domain.RoleAdmin}
)

func setup(t *testing.T) (*Engine, repository.ComplaintRepository, *testClock, *domain.Complaint) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
	store := repository.NewInMemoryComplaintRepository(clock.Now)
	complaint := &domain.Complaint{
		OwnerID:     "u1",
		Title:       "Late delivery",
		Description: "Parcel is two weeks late",
		Category:    "Delivery & Shipping",
		Priority:    domain.PriorityHigh,
	}
	require.NoError(t, store.Create(context.Background(), complaint))
	clock.Advance(time.Minute)
	return NewEngine(store, clock.Now), store, clock, complaint
}

func TestTransitionMaintainsResolvedAt(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := domain.Complaint{Status: domain.StatusPending}

	resolved := Transition(c, domain.StatusResolved, t0)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(t0))

	again := Transition(resolved, domain.StatusResolved, t0.Add(time.Hour))
	assert.True(t, again.ResolvedAt.Equal(t0), "resolving twice keeps the first timestamp")

	reopened := Transition(again, domain.StatusPending, t0.Add(2*time.Hour))
	assert.Nil(t, reopened.ResolvedAt)
	assert.Equal(t, domain.StatusPending, reopened.Status)
}

func TestTransitionInvariantHoldsForEveryPair(t *testing.T) {
	statuses := []domain.ComplaintStatus{domain.StatusPending, domain.StatusInProgress, domain.StatusResolved, domain.StatusRejected}
	now := time.Now()
	for _, from := range statuses {
		for _, to := range statuses {
			start := Transition(domain.Complaint{}, from, now)
			got := Transition(start, to, now.Add(time.Second))
			assert.Equal(t, got.Status == domain.StatusResolved, got.ResolvedAt != nil, "%s -> %s", from, to)
		}
	}
}

func TestApplyTransitionByStaffResolves(t *testing.T) {
	engine, store, _, complaint := setup(t)
	ctx := context.Background()

	assert.Equal(t, domain.StatusPending, complaint.Status)
	assert.Nil(t, complaint.ResolvedAt)

	updated, err := engine.ApplyTransition(ctx, staff, complaint, "resolved")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, updated.UpdatedAt.After(complaint.UpdatedAt))

	stored, err := store.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, stored.Status)
}

func TestApplyTransitionAllowsSkipsAndReopen(t *testing.T) {
	engine, _, clock, complaint := setup(t)
	ctx := context.Background()

	rejected, err := engine.ApplyTransition(ctx, admin, complaint, "rejected")
	require.NoError(t, err)
	clock.Advance(time.Second)

	reopened, err := engine.ApplyTransition(ctx, staff, rejected, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, reopened.Status)
	assert.Nil(t, reopened.ResolvedAt)
}

func TestApplyTransitionRejectsNonPrivilegedActors(t *testing.T) {
	engine, store, _, complaint := setup(t)
	ctx := context.Background()

	for _, actor := range []domain.Actor{owner, other} {
		_, err := engine.ApplyTransition(ctx, actor, complaint, "resolved")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	}

	stored, err := store.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.True(t, stored.UpdatedAt.Equal(complaint.UpdatedAt))
}

func TestApplyTransitionRejectsUnknownStatus(t *testing.T) {
	engine, _, _, complaint := setup(t)

	_, err := engine.ApplyTransition(context.Background(), staff, complaint, "closed")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestApplyTransitionAuthorizationCheckedBeforeStatus(t *testing.T) {
	engine, _, _, complaint := setup(t)

	_, err := engine.ApplyTransition(context.Background(), other, complaint, "closed")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestConcurrentTransitionsSecondCommitConflicts(t *testing.T) {
	engine, store, clock, complaint := setup(t)
	ctx := context.Background()

	readByS1, err := store.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	readByS2, err := store.GetByID(ctx, complaint.ID)
	require.NoError(t, err)

	_, err = engine.ApplyTransition(ctx, staff, readByS1, "in_progress")
	require.NoError(t, err)
	clock.Advance(time.Second)

	_, err = engine.ApplyTransition(ctx, staff2, readByS2, "rejected")
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.True(t, apperrors.IsRetryable(err))

	fresh, err := store.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, fresh.Status)

	retried, err := engine.ApplyTransition(ctx, staff2, fresh, "rejected")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, retried.Status)
}

func TestChangePriority(t *testing.T) {
	engine, _, _, complaint := setup(t)
	ctx := context.Background()

	_, err := engine.ChangePriority(ctx, owner, complaint, "urgent")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = engine.ChangePriority(ctx, staff, complaint, "critical")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	updated, err := engine.ChangePriority(ctx, staff, complaint, "urgent")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityUrgent, updated.Priority)
	assert.True(t, updated.UpdatedAt.After(complaint.UpdatedAt))
}

func TestEditContent(t *testing.T) {
	engine, _, clock, complaint := setup(t)
	ctx := context.Background()

	_, err := engine.EditContent(ctx, other, complaint, ContentChange{Title: strPtr("hijack")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = engine.EditContent(ctx, owner, complaint, ContentChange{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = engine.EditContent(ctx, owner, complaint, ContentChange{Title: strPtr("   ")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	edited, err := engine.EditContent(ctx, owner, complaint, ContentChange{Title: strPtr("  Very late delivery ")})
	require.NoError(t, err)
	assert.Equal(t, "Very late delivery", edited.Title)
	assert.Equal(t, "u1", edited.OwnerID)
	clock.Advance(time.Second)

	resolved, err := engine.ApplyTransition(ctx, staff, edited, "resolved")
	require.NoError(t, err)
	clock.Advance(time.Second)

	_, err = engine.EditContent(ctx, owner, resolved, ContentChange{Description: strPtr("more detail")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = engine.EditContent(ctx, staff, resolved, ContentChange{Category: strPtr("Other")})
	assert.NoError(t, err)
}
