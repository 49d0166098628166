// Package policy decides what an actor may see and change. Every read path goes
// through List; every mutation checks Visibility or CanEditContent first.
package policy

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Visibility is the access level an actor holds over a complaint.
type Visibility int

const (
	None Visibility = iota
	Read
	ReadWrite
)

func (v Visibility) String() string {
	switch v {
	case Read:
		return "READ"
	case ReadWrite:
		return "READ_WRITE"
	default:
		return "NONE"
	}
}

// VisibilityOf evaluates the fixed rule table, first match wins.
func VisibilityOf(actor domain.Actor, complaint *domain.Complaint) Visibility {
	if complaint == nil || actor.ID == "" {
		return None
	}
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleStaff:
		return ReadWrite
	case domain.RoleUser:
		if complaint.OwnerID == actor.ID {
			return Read
		}
		return None
	default:
		return None
	}
}

// CanEditContent reports whether the actor may change title, description, category or
// attachment. Owners keep that right until the complaint is resolved.
func CanEditContent(actor domain.Actor, complaint *domain.Complaint) bool {
	switch VisibilityOf(actor, complaint) {
	case ReadWrite:
		return true
	case Read:
		return complaint.OwnerID == actor.ID && complaint.Status.Normalized() != domain.StatusResolved
	default:
		return false
	}
}

// Scope is the store query hint derived from the actor. OwnerID is nil for privileged actors.
type Scope struct {
	OwnerID *string
	Limit   int
}

// ScopeFor narrows the store query for non-privileged actors.
func ScopeFor(actor domain.Actor) Scope {
	if actor.Role.Privileged() {
		return Scope{}
	}
	id := actor.ID
	return Scope{OwnerID: &id}
}

// Lister is the read surface of the complaint store used by List.
type Lister interface {
	List(ctx context.Context, scope Scope) ([]domain.Complaint, error)
}

// List returns the complaints visible to actor in store order (newest first). The
// store query is narrowed by ScopeFor and every row is re-checked against VisibilityOf.
// limit <= 0 means no limit.
func List(ctx context.Context, actor domain.Actor, store Lister, limit int) ([]domain.Complaint, error) {
	scope := ScopeFor(actor)
	scope.Limit = limit
	rows, err := store.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	return Visible(actor, rows), nil
}

// Visible keeps the complaints with visibility other than None, preserving order.
func Visible(actor domain.Actor, complaints []domain.Complaint) []domain.Complaint {
	out := make([]domain.Complaint, 0, len(complaints))
	for i := range complaints {
		if VisibilityOf(actor, &complaints[i]) != None {
			out = append(out, complaints[i])
		}
	}
	return out
}
