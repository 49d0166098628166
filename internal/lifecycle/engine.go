// Package lifecycle validates and applies complaint mutations: status transitions,
// priority changes and content edits. All writes go through the store's optimistic
// Update, using the caller's copy of the record as the expected version.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Engine applies mutations to complaints on behalf of actors.
type Engine struct {
	store repository.ComplaintRepository
	clock func() time.Time
}

// NewEngine constructs the engine. A nil clock uses time.Now.
func NewEngine(store repository.ComplaintRepository, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{store: store, clock: clock}
}

// ParseStatus validates a wire status value.
func ParseStatus(raw string) (domain.ComplaintStatus, error) {
	status := domain.ComplaintStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", apperrors.NewInvalidStatus(raw)
	}
	return status, nil
}

// ParsePriority validates a wire priority value.
func ParsePriority(raw string) (domain.ComplaintPriority, error) {
	priority := domain.ComplaintPriority(strings.TrimSpace(raw))
	if !priority.Valid() {
		return "", apperrors.NewValidationError("invalid priority", map[string]any{"priority": raw})
	}
	return priority, nil
}

// Transition returns c moved to status `to` at `now`. Any of the four statuses may follow
// any other; resolved_at is set on entering resolved and cleared on leaving it. A
// resolved complaint resolved again keeps its original resolved_at.
func Transition(c domain.Complaint, to domain.ComplaintStatus, now time.Time) domain.Complaint {
	if to == domain.StatusResolved {
		if c.Status != domain.StatusResolved || c.ResolvedAt == nil {
			c.ResolvedAt = &now
		}
	} else {
		c.ResolvedAt = nil
	}
	c.Status = to
	c.UpdatedAt = now
	return c
}

// ApplyTransition changes the status of complaint. complaint is the caller's read; its
// UpdatedAt is the version the write is conditioned on.
func (e *Engine) ApplyTransition(ctx context.Context, actor domain.Actor, complaint *domain.Complaint, newStatus string) (*domain.Complaint, error) {
	if policy.VisibilityOf(actor, complaint) != policy.ReadWrite {
		return nil, apperrors.NewForbidden("status changes require staff or admin access")
	}
	status, err := ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}
	return e.store.Update(ctx, complaint.ID, complaint.UpdatedAt, func(current domain.Complaint) (domain.Complaint, error) {
		return Transition(current, status, e.now()), nil
	})
}

// ChangePriority sets a new priority. Only READ_WRITE actors may reprioritize.
func (e *Engine) ChangePriority(ctx context.Context, actor domain.Actor, complaint *domain.Complaint, newPriority string) (*domain.Complaint, error) {
	if policy.VisibilityOf(actor, complaint) != policy.ReadWrite {
		return nil, apperrors.NewForbidden("priority changes require staff or admin access")
	}
	priority, err := ParsePriority(newPriority)
	if err != nil {
		return nil, err
	}
	return e.store.Update(ctx, complaint.ID, complaint.UpdatedAt, func(current domain.Complaint) (domain.Complaint, error) {
		current.Priority = priority
		current.UpdatedAt = e.now()
		return current, nil
	})
}

// ContentChange lists the content fields to overwrite. Nil fields are kept.
type ContentChange struct {
	Title         *string
	Description   *string
	Category      *string
	AttachmentRef *string
}

func (c ContentChange) empty() bool {
	return c.Title == nil && c.Description == nil && c.Category == nil && c.AttachmentRef == nil
}

// EditContent updates content fields, allowed for staff/admin and for owners of
// complaints that are not resolved.
func (e *Engine) EditContent(ctx context.Context, actor domain.Actor, complaint *domain.Complaint, change ContentChange) (*domain.Complaint, error) {
	if !policy.CanEditContent(actor, complaint) {
		return nil, apperrors.NewForbidden("complaint cannot be edited by this actor")
	}
	if change.empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	details := map[string]any{}
	for field, val := range map[string]*string{
		"title":       change.Title,
		"description": change.Description,
		"category":    change.Category,
	} {
		if val != nil && strings.TrimSpace(*val) == "" {
			details[field] = "must not be empty"
		}
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid complaint content", details)
	}

	return e.store.Update(ctx, complaint.ID, complaint.UpdatedAt, func(current domain.Complaint) (domain.Complaint, error) {
		if !policy.CanEditContent(actor, &current) {
			return current, apperrors.NewForbidden("complaint cannot be edited by this actor")
		}
		if change.Title != nil {
			current.Title = strings.TrimSpace(*change.Title)
		}
		if change.Description != nil {
			current.Description = strings.TrimSpace(*change.Description)
		}
		if change.Category != nil {
			current.Category = strings.TrimSpace(*change.Category)
		}
		if change.AttachmentRef != nil {
			ref := *change.AttachmentRef
			current.AttachmentRef = &ref
		}
		current.UpdatedAt = e.now()
		return current, nil
	})
}

func (e *Engine) now() time.Time {
	return e.clock().UTC().Truncate(time.Microsecond)
}
