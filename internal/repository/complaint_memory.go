package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
)

type inMemoryComplaintRepository struct {
	mu    sync.RWMutex
	rows  map[string]domain.Complaint
	clock Clock
}

// NewInMemoryComplaintRepository returns a process-local store used when no DSN is configured.
func NewInMemoryComplaintRepository(clock Clock) ComplaintRepository {
	if clock == nil {
		clock = systemClock
	}
	return &inMemoryComplaintRepository{rows: make(map[string]domain.Complaint), clock: clock}
}

func (r *inMemoryComplaintRepository) Create(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prepareNew(complaint, stamp(r.clock))
	r.rows[complaint.ID] = complaint.Clone()
	return nil
}

func (r *inMemoryComplaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, complaintNotFound(id)
	}
	out := row.Clone()
	return &out, nil
}

func (r *inMemoryComplaintRepository) Update(_ context.Context, id string, expected time.Time, mutate Mutator) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[id]
	if !ok {
		return nil, complaintNotFound(id)
	}
	next, err := applyMutation(current.Clone(), expected, mutate, stamp(r.clock))
	if err != nil {
		return nil, err
	}
	r.rows[id] = next.Clone()
	return &next, nil
}

func (r *inMemoryComplaintRepository) List(_ context.Context, scope policy.Scope) ([]domain.Complaint, error) {
	r.mu.RLock()
	result := make([]domain.Complaint, 0, len(r.rows))
	for _, row := range r.rows {
		if scope.OwnerID != nil && row.OwnerID != *scope.OwnerID {
			continue
		}
		result = append(result, row.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	if scope.Limit > 0 && len(result) > scope.Limit {
		result = result[:scope.Limit]
	}
	return result, nil
}
