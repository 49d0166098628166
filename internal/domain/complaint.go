package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusRejected   ComplaintStatus = "rejected"
)

// Valid reports whether the status is one of the four wire values.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Normalized maps unset or unrecognized values onto pending.
func (s ComplaintStatus) Normalized() ComplaintStatus {
	if s.Valid() {
		return s
	}
	return StatusPending
}

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
	PriorityUrgent ComplaintPriority = "urgent"
)

// Valid reports whether the priority is one of the four wire values.
func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Categories offered to complainants when filing.
var Categories = []string{
	"Technical Issue",
	"Service Quality",
	"Billing & Payment",
	"Product Defect",
	"Customer Service",
	"Delivery & Shipping",
	"Website/App Issue",
	"Privacy Concern",
	"Refund Request",
	"Other",
}

// Complaint is the aggregate filed by an owner and triaged by staff.
type Complaint struct {
	ID            string
	OwnerID       string
	Title         string
	Description   string
	Category      string
	Priority      ComplaintPriority
	Status        ComplaintStatus
	AttachmentRef *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ResolvedAt    *time.Time
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (c Complaint) Clone() Complaint {
	out := c
	if c.AttachmentRef != nil {
		ref := *c.AttachmentRef
		out.AttachmentRef = &ref
	}
	if c.ResolvedAt != nil {
		at := *c.ResolvedAt
		out.ResolvedAt = &at
	}
	return out
}

// ComplaintView is a complaint as shown to an actor, optionally joined with its owner.
type ComplaintView struct {
	Complaint
	Owner *OwnerSummary
}

// ComplaintStats holds per-status counts over an access-scoped complaint set.
type ComplaintStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
}
