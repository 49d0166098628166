package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated         EventType = "complaint_created"
	EventComplaintStatusChanged   EventType = "complaint_status_changed"
	EventComplaintPriorityChanged EventType = "complaint_priority_changed"
	EventComplaintUpdated         EventType = "complaint_updated"
)

// Actor identifies who caused an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// NewEvent stamps a fresh event for the given complaint.
func NewEvent(eventType EventType, complaintID string, actor domain.Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaintID,
		Actor:       Actor{ID: actor.ID, Role: actor.Role},
		Timestamp:   at,
		Payload:     payload,
	}
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	OwnerID  string                   `json:"owner_id"`
	Category string                   `json:"category"`
	Priority domain.ComplaintPriority `json:"priority"`
	Title    string                   `json:"title"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintPriorityChangedPayload payload.
type ComplaintPriorityChangedPayload struct {
	OldPriority domain.ComplaintPriority `json:"old_priority"`
	NewPriority domain.ComplaintPriority `json:"new_priority"`
}

// ComplaintUpdatedPayload lists the content fields that changed.
type ComplaintUpdatedPayload struct {
	Fields []string `json:"fields"`
}
