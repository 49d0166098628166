package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
)

const complaintColumns = `id, owner_id, title, description, category, priority, COALESCE(status, ''),
               attachment_ref, created_at, updated_at, resolved_at`

type complaintRepository struct {
	pool  *pgxpool.Pool
	clock Clock
}

// NewComplaintRepository instantiates the Postgres-backed store.
func NewComplaintRepository(pool *pgxpool.Pool, clock Clock) ComplaintRepository {
	if clock == nil {
		clock = systemClock
	}
	return &complaintRepository{pool: pool, clock: clock}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	prepareNew(complaint, stamp(r.clock))
	const query = `
        INSERT INTO complaints (id, owner_id, title, description, category, priority, status,
            attachment_ref, created_at, updated_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.pool.Exec(ctx, query,
		complaint.ID,
		complaint.OwnerID,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Priority,
		complaint.Status,
		complaint.AttachmentRef,
		complaint.CreatedAt,
		complaint.UpdatedAt,
		complaint.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	complaint, err := scanComplaint(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, complaintNotFound(id)
		}
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	return complaint, nil
}

func (r *complaintRepository) Update(ctx context.Context, id string, expected time.Time, mutate Mutator) (*domain.Complaint, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1 FOR UPDATE`
	current, err := scanComplaint(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, complaintNotFound(id)
		}
		return nil, fmt.Errorf("lock complaint: %w", err)
	}

	next, err := applyMutation(*current, expected, mutate, stamp(r.clock))
	if err != nil {
		return nil, err
	}

	const update = `
        UPDATE complaints SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            attachment_ref=$6, updated_at=$7, resolved_at=$8
        WHERE id=$9 AND updated_at=$10`
	cmd, err := tx.Exec(ctx, update,
		next.Title,
		next.Description,
		next.Category,
		next.Priority,
		next.Status,
		next.AttachmentRef,
		next.UpdatedAt,
		next.ResolvedAt,
		next.ID,
		expected,
	)
	if err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, conflictError(*current)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit complaint update: %w", err)
	}
	return &next, nil
}

func (r *complaintRepository) List(ctx context.Context, scope policy.Scope) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if scope.OwnerID != nil {
		args = append(args, *scope.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC, id DESC`, base, strings.Join(clauses, " AND "))
	if scope.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", scope.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := row.Scan(
		&complaint.ID,
		&complaint.OwnerID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Priority,
		&complaint.Status,
		&complaint.AttachmentRef,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.ResolvedAt,
	); err != nil {
		return nil, err
	}
	normalizeTimes(&complaint)
	return &complaint, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	result := []domain.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func normalizeTimes(c *domain.Complaint) {
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	if c.ResolvedAt != nil {
		at := c.ResolvedAt.UTC()
		c.ResolvedAt = &at
	}
}
