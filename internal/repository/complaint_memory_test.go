package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type ComplaintStoreSuite struct {
	suite.Suite
	clock *fakeClock
	store ComplaintRepository
	ctx   context.Context
}

func (s *ComplaintStoreSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s.store = NewInMemoryComplaintRepository(s.clock.Now)
	s.ctx = context.Background()
}

func TestComplaintStoreSuite(t *testing.T) {
	suite.Run(t, new(ComplaintStoreSuite))
}

func (s *ComplaintStoreSuite) create(owner, title string) *domain.Complaint {
	c := &domain.Complaint{OwnerID: owner, Title: title, Description: "d", Category: "Other"}
	s.Require().NoError(s.store.Create(s.ctx, c))
	return c
}

func (s *ComplaintStoreSuite) TestCreateAppliesDefaults() {
	c := s.create("u1", "Late delivery")

	s.NotEmpty(c.ID)
	s.Equal(domain.StatusPending, c.Status)
	s.Equal(domain.PriorityMedium, c.Priority)
	s.Nil(c.ResolvedAt)
	s.True(c.CreatedAt.Equal(c.UpdatedAt))

	found, err := s.store.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Title, found.Title)
}

func (s *ComplaintStoreSuite) TestGetUnknownReturnsNotFound() {
	_, err := s.store.GetByID(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ComplaintStoreSuite) TestListOrdersNewestFirst() {
	first := s.create("u1", "first")
	s.clock.Advance(time.Second)
	second := s.create("u2", "second")
	s.clock.Advance(time.Second)
	third := s.create("u1", "third")

	all, err := s.store.List(s.ctx, policy.Scope{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	owner := "u1"
	mine, err := s.store.List(s.ctx, policy.Scope{OwnerID: &owner, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(third.ID, mine[0].ID)
}

func (s *ComplaintStoreSuite) TestListTieBreaksByID() {
	a := s.create("u1", "a")
	b := s.create("u1", "b")

	all, err := s.store.List(s.ctx, policy.Scope{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	if a.ID > b.ID {
		s.Equal(a.ID, all[0].ID)
	} else {
		s.Equal(b.ID, all[0].ID)
	}
}

func (s *ComplaintStoreSuite) TestUpdateKeepsImmutableFields() {
	c := s.create("u1", "title")
	s.clock.Advance(time.Minute)

	updated, err := s.store.Update(s.ctx, c.ID, c.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
		cur.OwnerID = "intruder"
		cur.CreatedAt = time.Time{}
		cur.Title = "new title"
		return cur, nil
	})
	s.Require().NoError(err)
	s.Equal("u1", updated.OwnerID)
	s.True(updated.CreatedAt.Equal(c.CreatedAt))
	s.Equal("new title", updated.Title)
	s.True(updated.UpdatedAt.After(c.UpdatedAt))
}

func (s *ComplaintStoreSuite) TestUpdateRejectsStaleVersion() {
	c := s.create("u1", "title")
	s.clock.Advance(time.Second)

	_, err := s.store.Update(s.ctx, c.ID, c.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
		cur.Status = domain.StatusInProgress
		return cur, nil
	})
	s.Require().NoError(err)

	_, err = s.store.Update(s.ctx, c.ID, c.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
		cur.Status = domain.StatusRejected
		return cur, nil
	})
	s.ErrorIs(err, apperrors.ErrConflict)

	stored, err := s.store.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusInProgress, stored.Status)
}

func (s *ComplaintStoreSuite) TestUpdateAdvancesUpdatedAtWithFrozenClock() {
	c := s.create("u1", "title")

	updated, err := s.store.Update(s.ctx, c.ID, c.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
		cur.Priority = domain.PriorityHigh
		return cur, nil
	})
	s.Require().NoError(err)
	s.True(updated.UpdatedAt.After(c.UpdatedAt))
}

func (s *ComplaintStoreSuite) TestUpdateEnforcesResolvedAtInvariant() {
	c := s.create("u1", "title")
	s.clock.Advance(time.Second)

	resolved, err := s.store.Update(s.ctx, c.ID, c.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
		cur.Status = domain.StatusResolved
		return cur, nil
	})
	s.Require().NoError(err)
	s.Require().NotNil(resolved.ResolvedAt)

	s.clock.Advance(time.Second)
	reopened, err := s.store.Update(s.ctx, c.ID, resolved.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
		cur.Status = domain.StatusInProgress
		return cur, nil
	})
	s.Require().NoError(err)
	s.Nil(reopened.ResolvedAt)
}

func (s *ComplaintStoreSuite) TestMutatorErrorLeavesRecordUntouched() {
	c := s.create("u1", "title")
	boom := errors.New("rejected by mutator")

	_, err := s.store.Update(s.ctx, c.ID, c.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
		return cur, boom
	})
	s.ErrorIs(err, boom)

	stored, err := s.store.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(stored.UpdatedAt.Equal(c.UpdatedAt))
}

func (s *ComplaintStoreSuite) TestUpdateUnknownReturnsNotFound() {
	_, err := s.store.Update(s.ctx, "missing", time.Now(), func(cur domain.Complaint) (domain.Complaint, error) {
		return cur, nil
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ComplaintStoreSuite) TestReturnedRecordsAreCopies() {
	ref := "https://cdn/u1/1.png"
	c := &domain.Complaint{OwnerID: "u1", Title: "t", AttachmentRef: &ref}
	s.Require().NoError(s.store.Create(s.ctx, c))

	found, err := s.store.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	*found.AttachmentRef = "tampered"

	again, err := s.store.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("https://cdn/u1/1.png", *again.AttachmentRef)
}

func (s *ComplaintStoreSuite) TestConcurrentWritersOnlyOneWins() {
	c := s.create("u1", "title")
	s.clock.Advance(time.Second)

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(s.ctx, c.ID, c.UpdatedAt, func(cur domain.Complaint) (domain.Complaint, error) {
				cur.Status = domain.StatusInProgress
				return cur, nil
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrConflict):
			conflicts++
		}
	}
	s.Equal(1, ok)
	s.Equal(writers-1, conflicts)
}

func TestApplyMutationWritesPendingForMissingStatus(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	legacy := domain.Complaint{
		ID:        "c1",
		OwnerID:   "u1",
		Priority:  domain.PriorityLow,
		CreatedAt: created,
		UpdatedAt: created,
	}

	next, err := applyMutation(legacy, created, func(c domain.Complaint) (domain.Complaint, error) {
		c.Priority = domain.PriorityHigh
		return c, nil
	}, created.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, next.Status)
	assert.Nil(t, next.ResolvedAt)
	assert.Equal(t, domain.PriorityHigh, next.Priority)
}
