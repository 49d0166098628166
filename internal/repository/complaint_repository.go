package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Mutator receives a private copy of the current record and returns the desired next state.
// Returning an error aborts the update without writing anything.
type Mutator func(current domain.Complaint) (domain.Complaint, error)

// ComplaintRepository is the durable complaint store.
type ComplaintRepository interface {
	// Create assigns id, created_at and updated_at and applies field defaults.
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// Update applies mutate only if the stored updated_at still equals expected.
	Update(ctx context.Context, id string, expected time.Time, mutate Mutator) (*domain.Complaint, error)
	// List orders by created_at descending, ties broken by id descending.
	List(ctx context.Context, scope policy.Scope) ([]domain.Complaint, error)
}

// Clock returns the current time. Stores truncate it to microseconds, the Postgres precision.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

func stamp(clock Clock) time.Time {
	return clock().UTC().Truncate(time.Microsecond)
}

func prepareNew(complaint *domain.Complaint, now time.Time) {
	complaint.ID = uuid.NewString()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	if complaint.Status == "" {
		complaint.Status = domain.StatusPending
	}
	if complaint.Priority == "" {
		complaint.Priority = domain.PriorityMedium
	}
	if complaint.Status == domain.StatusResolved {
		complaint.ResolvedAt = &now
	} else {
		complaint.ResolvedAt = nil
	}
}

// applyMutation runs the optimistic check and the mutator, then re-establishes the
// record invariants: immutable identity fields, a valid status, strictly increasing
// updated_at and resolved_at set only while resolved.
func applyMutation(current domain.Complaint, expected time.Time, mutate Mutator, now time.Time) (domain.Complaint, error) {
	if !current.UpdatedAt.Equal(expected) {
		return domain.Complaint{}, conflictError(current)
	}
	next, err := mutate(current.Clone())
	if err != nil {
		return domain.Complaint{}, err
	}

	next.ID = current.ID
	next.OwnerID = current.OwnerID
	next.CreatedAt = current.CreatedAt

	ts := next.UpdatedAt.UTC().Truncate(time.Microsecond)
	if ts.IsZero() || ts.Equal(current.UpdatedAt) {
		ts = now
	}
	if !ts.After(current.UpdatedAt) {
		ts = current.UpdatedAt.Add(time.Microsecond)
	}
	next.UpdatedAt = ts

	if next.Priority == "" {
		next.Priority = domain.PriorityMedium
	}
	// rows written before status was required come back empty
	next.Status = next.Status.Normalized()
	if next.Status == domain.StatusResolved {
		if next.ResolvedAt == nil {
			next.ResolvedAt = &ts
		}
	} else {
		next.ResolvedAt = nil
	}
	return next, nil
}

func conflictError(current domain.Complaint) error {
	return apperrors.NewConflict("complaint was modified concurrently", map[string]any{
		"complaint_id": current.ID,
		"updated_at":   current.UpdatedAt,
	})
}

func complaintNotFound(id string) error {
	return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
}
