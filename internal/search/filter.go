// Package search filters access-scoped complaint views. Filtering is pure: inputs are
// never reordered or modified, only non-matches are dropped.
package search

import (
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// All is the sentinel meaning "do not restrict".
const All = "all"

// Criteria holds the optional filter inputs. Empty values and All are no-ops.
type Criteria struct {
	Text     string
	Status   domain.ComplaintStatus
	Priority domain.ComplaintPriority
}

// ParseCriteria validates raw query values.
func ParseCriteria(text, status, priority string) (Criteria, error) {
	c := Criteria{Text: strings.TrimSpace(text)}

	status = strings.TrimSpace(status)
	if status != "" && status != All {
		s := domain.ComplaintStatus(status)
		if !s.Valid() {
			return Criteria{}, apperrors.NewInvalidStatus(status)
		}
		c.Status = s
	}

	priority = strings.TrimSpace(priority)
	if priority != "" && priority != All {
		p := domain.ComplaintPriority(priority)
		if !p.Valid() {
			return Criteria{}, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
		}
		c.Priority = p
	}
	return c, nil
}

// Predicate decides whether a view is kept.
type Predicate func(view *domain.ComplaintView) bool

// TextMatch matches title, description and category case-insensitively. Owner name and
// email are searched only when privileged is set.
func TextMatch(text string, privileged bool) Predicate {
	needle := strings.ToLower(strings.TrimSpace(text))
	return func(view *domain.ComplaintView) bool {
		if needle == "" {
			return true
		}
		fields := []string{view.Title, view.Description, view.Category}
		if privileged && view.Owner != nil {
			fields = append(fields, view.Owner.DisplayName, view.Owner.Email)
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
}

// StatusIs matches the normalized status, so unset statuses count as pending here too.
func StatusIs(status domain.ComplaintStatus) Predicate {
	return func(view *domain.ComplaintView) bool {
		return status == "" || view.Status.Normalized() == status
	}
}

// PriorityIs matches the exact priority.
func PriorityIs(priority domain.ComplaintPriority) Predicate {
	return func(view *domain.ComplaintView) bool {
		return priority == "" || view.Priority == priority
	}
}

// Predicates expands the criteria into predicates combined with AND.
func (c Criteria) Predicates(privileged bool) []Predicate {
	preds := make([]Predicate, 0, 3)
	if c.Text != "" {
		preds = append(preds, TextMatch(c.Text, privileged))
	}
	if c.Status != "" {
		preds = append(preds, StatusIs(c.Status))
	}
	if c.Priority != "" {
		preds = append(preds, PriorityIs(c.Priority))
	}
	return preds
}

// Apply keeps the views satisfying every predicate, in input order.
func Apply(views []domain.ComplaintView, preds ...Predicate) []domain.ComplaintView {
	out := make([]domain.ComplaintView, 0, len(views))
outer:
	for i := range views {
		for _, pred := range preds {
			if !pred(&views[i]) {
				continue outer
			}
		}
		out = append(out, views[i])
	}
	return out
}

// Filter applies criteria to views scoped for an actor.
func Filter(views []domain.ComplaintView, criteria Criteria, privileged bool) []domain.ComplaintView {
	return Apply(views, criteria.Predicates(privileged)...)
}
