package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Priority      string  `json:"priority"`
	AttachmentRef *string `json:"attachment_ref"`
}

// UpdateComplaintRequest payload for content edits.
type UpdateComplaintRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Category          *string    `json:"category"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}

// UpdateStatusRequest payload. ExpectedUpdatedAt is the version the client last read.
type UpdateStatusRequest struct {
	Status            string     `json:"status"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority          string     `json:"priority"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}

// ComplaintResponse is the wire form of a complaint.
type ComplaintResponse struct {
	ID            string                   `json:"id"`
	OwnerID       string                   `json:"owner_id"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description"`
	Category      string                   `json:"category"`
	Priority      domain.ComplaintPriority `json:"priority"`
	Status        domain.ComplaintStatus   `json:"status"`
	AttachmentRef *string                  `json:"attachment_ref"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	ResolvedAt    *time.Time               `json:"resolved_at"`
	Owner         *domain.OwnerSummary     `json:"owner,omitempty"`
}

// NewComplaintResponse converts a complaint. Unset statuses are reported as pending.
func NewComplaintResponse(c *domain.Complaint, owner *domain.OwnerSummary) ComplaintResponse {
	return ComplaintResponse{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Priority:      c.Priority,
		Status:        c.Status.Normalized(),
		AttachmentRef: c.AttachmentRef,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		ResolvedAt:    c.ResolvedAt,
		Owner:         owner,
	}
}

// NewComplaintResponses converts views in order.
func NewComplaintResponses(views []domain.ComplaintView) []ComplaintResponse {
	items := make([]ComplaintResponse, 0, len(views))
	for i := range views {
		items = append(items, NewComplaintResponse(&views[i].Complaint, views[i].Owner))
	}
	return items
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID            string                     `json:"id"`
	ChangedByID   string                     `json:"changed_by_id"`
	ChangedByRole domain.Role                `json:"changed_by_role"`
	ChangeType    domain.ComplaintChangeType `json:"change_type"`
	OldValue      map[string]any             `json:"old_value,omitempty"`
	NewValue      map[string]any             `json:"new_value,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// NewHistoryResponses converts audit entries in order.
func NewHistoryResponses(entries []domain.ComplaintHistory) []HistoryResponse {
	items := make([]HistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryResponse{
			ID:            e.ID,
			ChangedByID:   e.ChangedByID,
			ChangedByRole: e.ChangedByRole,
			ChangeType:    e.ChangeType,
			OldValue:      e.OldValue,
			NewValue:      e.NewValue,
			CreatedAt:     e.CreatedAt,
		})
	}
	return items
}
