package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintHistoryRepository stores audit entries. Create is idempotent on entry id.
type ComplaintHistoryRepository interface {
	Create(ctx context.Context, entry *domain.ComplaintHistory) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error)
}

type complaintHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintHistoryRepository builds repository.
func NewComplaintHistoryRepository(pool *pgxpool.Pool) ComplaintHistoryRepository {
	return &complaintHistoryRepository{pool: pool}
}

func (r *complaintHistoryRepository) Create(ctx context.Context, entry *domain.ComplaintHistory) error {
	const query = `
        INSERT INTO complaint_history (id, complaint_id, changed_by_id, changed_by_role, change_type, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.ComplaintID,
		entry.ChangedByID,
		entry.ChangedByRole,
		entry.ChangeType,
		entry.OldValue,
		entry.NewValue,
		entry.CreatedAt,
	)
	return err
}

func (r *complaintHistoryRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	const query = `
        SELECT id, complaint_id, changed_by_id, changed_by_role, change_type, old_value, new_value, created_at
        FROM complaint_history WHERE complaint_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ComplaintHistory{}
	for rows.Next() {
		var entry domain.ComplaintHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.ChangedByID,
			&entry.ChangedByRole,
			&entry.ChangeType,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		result = append(result, entry)
	}
	return result, rows.Err()
}

type inMemoryComplaintHistoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.ComplaintHistory
	seen    map[string]struct{}
}

// NewInMemoryComplaintHistoryRepository returns a process-local history store.
func NewInMemoryComplaintHistoryRepository() ComplaintHistoryRepository {
	return &inMemoryComplaintHistoryRepository{
		entries: make(map[string][]domain.ComplaintHistory),
		seen:    make(map[string]struct{}),
	}
}

func (r *inMemoryComplaintHistoryRepository) Create(_ context.Context, entry *domain.ComplaintHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[entry.ID]; dup {
		return nil
	}
	r.seen[entry.ID] = struct{}{}
	r.entries[entry.ComplaintID] = append(r.entries[entry.ComplaintID], *entry)
	return nil
}

func (r *inMemoryComplaintHistoryRepository) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]domain.ComplaintHistory{}, r.entries[complaintID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
