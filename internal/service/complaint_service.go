package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/blob"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/lifecycle"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/policy"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/search"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints     repository.ComplaintRepository
	profiles       repository.ProfileRepository
	history        repository.ComplaintHistoryRepository
	engine         *lifecycle.Engine
	blobs          blob.Store
	dispatcher     events.Dispatcher
	metrics        *observability.Metrics
	logger         *zap.Logger
	clock          func() time.Time
	maxUploadBytes int
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	ProfileRepo    repository.ProfileRepository
	HistoryRepo    repository.ComplaintHistoryRepository
	Blobs          blob.Store
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Clock          func() time.Time
	MaxUploadBytes int
}

// CreateComplaintInput describes complaint creation payload.
type CreateComplaintInput struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"required,max=5000"`
	Category      string  `json:"category" validate:"required,max=100"`
	Priority      string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AttachmentRef *string `json:"attachment_ref" validate:"omitempty,max=2048"`
}

// ListFilter carries the optional search criteria. Empty or "all" means no restriction.
type ListFilter struct {
	Text     string
	Status   string
	Priority string
}

// EditComplaintInput lists content fields to overwrite.
type EditComplaintInput struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        []byte
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints:     deps.ComplaintRepo,
		profiles:       deps.ProfileRepo,
		history:        deps.HistoryRepo,
		engine:         lifecycle.NewEngine(deps.ComplaintRepo, clock),
		blobs:          deps.Blobs,
		dispatcher:     deps.Dispatcher,
		metrics:        deps.Metrics,
		logger:         logger,
		clock:          clock,
		maxUploadBytes: deps.MaxUploadBytes,
	}
}

// CreateComplaint files a complaint owned by actor. Status always starts as pending.
func (s *ComplaintService) CreateComplaint(ctx context.Context, actor domain.Actor, input CreateComplaintInput) (*domain.Complaint, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.Priority = strings.TrimSpace(input.Priority)
	input.AttachmentRef = trimPtr(input.AttachmentRef)
	if input.AttachmentRef != nil && *input.AttachmentRef == "" {
		input.AttachmentRef = nil
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	complaint := &domain.Complaint{
		OwnerID:       actor.ID,
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Priority:      domain.ComplaintPriority(input.Priority),
		Status:        domain.StatusPending,
		AttachmentRef: input.AttachmentRef,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventComplaintCreated, complaint.ID, actor, complaint.CreatedAt,
		events.ComplaintCreatedPayload{
			OwnerID:  complaint.OwnerID,
			Category: complaint.Category,
			Priority: complaint.Priority,
			Title:    complaint.Title,
		}))
	return complaint, nil
}

// ListComplaints returns the complaints visible to actor, newest first, narrowed by filter.
// Privileged actors get owner summaries joined in, and their text search also covers them.
func (s *ComplaintService) ListComplaints(ctx context.Context, actor domain.Actor, filter ListFilter) ([]domain.ComplaintView, error) {
	criteria, err := search.ParseCriteria(filter.Text, filter.Status, filter.Priority)
	if err != nil {
		return nil, err
	}
	visible, err := policy.List(ctx, actor, s.complaints, 0)
	if err != nil {
		return nil, err
	}
	privileged := actor.Role.Privileged()
	views, err := withOwners(ctx, s.profiles, visible, privileged)
	if err != nil {
		return nil, err
	}
	return search.Filter(views, criteria, privileged), nil
}

// GetComplaint returns a single complaint the actor may read.
func (s *ComplaintService) GetComplaint(ctx context.Context, actor domain.Actor, id string) (*domain.ComplaintView, error) {
	complaint, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	views, err := withOwners(ctx, s.profiles, []domain.Complaint{*complaint}, actor.Role.Privileged())
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// TransitionStatus moves a complaint to newStatus. When expected is set the write is
// conditioned on that updated_at instead of the freshly read one, so clients can carry
// the version they looked at.
func (s *ComplaintService) TransitionStatus(ctx context.Context, actor domain.Actor, id, newStatus string, expected *time.Time) (*domain.Complaint, error) {
	current, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := current.Status.Normalized()
	withExpected(current, expected)

	updated, err := s.engine.ApplyTransition(ctx, actor, current, newStatus)
	if err != nil {
		return nil, s.mutationFailed(err, "transition", id, actor)
	}

	s.metrics.RecordTransition(string(updated.Status))
	s.logger.Info("complaint status changed",
		zap.String("complaint_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(updated.Status)))
	s.publishEvent(ctx, events.NewEvent(events.EventComplaintStatusChanged, id, actor, updated.UpdatedAt,
		events.ComplaintStatusChangedPayload{OldStatus: previous, NewStatus: updated.Status}))
	return updated, nil
}

// UpdatePriority changes the priority of a complaint. Staff and admin only.
func (s *ComplaintService) UpdatePriority(ctx context.Context, actor domain.Actor, id, newPriority string, expected *time.Time) (*domain.Complaint, error) {
	current, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := current.Priority
	withExpected(current, expected)

	updated, err := s.engine.ChangePriority(ctx, actor, current, newPriority)
	if err != nil {
		return nil, s.mutationFailed(err, "priority", id, actor)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventComplaintPriorityChanged, id, actor, updated.UpdatedAt,
		events.ComplaintPriorityChangedPayload{OldPriority: previous, NewPriority: updated.Priority}))
	return updated, nil
}

// EditComplaint overwrites content fields. Owners may edit until the complaint is resolved.
func (s *ComplaintService) EditComplaint(ctx context.Context, actor domain.Actor, id string, input EditComplaintInput, expected *time.Time) (*domain.Complaint, error) {
	input.Title = trimPtr(input.Title)
	input.Description = trimPtr(input.Description)
	input.Category = trimPtr(input.Category)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	withExpected(current, expected)

	change := lifecycle.ContentChange{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
	}
	updated, err := s.engine.EditContent(ctx, actor, current, change)
	if err != nil {
		return nil, s.mutationFailed(err, "edit", id, actor)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventComplaintUpdated, id, actor, updated.UpdatedAt,
		events.ComplaintUpdatedPayload{Fields: changedFields(change)}))
	return updated, nil
}

// AttachFile uploads a file to blob storage and stores the returned url as the
// complaint's attachment reference. A failed upload leaves the record untouched.
func (s *ComplaintService) AttachFile(ctx context.Context, actor domain.Actor, id string, upload Upload) (*domain.Complaint, error) {
	current, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditContent(actor, current) {
		return nil, apperrors.NewForbidden("complaint cannot be edited by this actor")
	}
	if err := s.checkUpload(upload); err != nil {
		return nil, err
	}

	key := blob.AttachmentKey(current.OwnerID, upload.Filename, s.clock())
	url, err := s.blobs.Put(ctx, key, upload.Body, upload.ContentType)
	if err != nil {
		s.metrics.RecordUpload("attachment", false)
		s.logger.Warn("attachment upload failed", zap.String("complaint_id", id), zap.String("key", key), zap.Error(err))
		return nil, apperrors.NewStorageError(err)
	}
	s.metrics.RecordUpload("attachment", true)

	change := lifecycle.ContentChange{AttachmentRef: &url}
	updated, err := s.engine.EditContent(ctx, actor, current, change)
	if err != nil {
		return nil, s.mutationFailed(err, "attach", id, actor)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventComplaintUpdated, id, actor, updated.UpdatedAt,
		events.ComplaintUpdatedPayload{Fields: changedFields(change)}))
	return updated, nil
}

// History returns the audit trail of a complaint the actor may read, oldest first.
func (s *ComplaintService) History(ctx context.Context, actor domain.Actor, id string) ([]domain.ComplaintHistory, error) {
	if _, err := s.readable(ctx, actor, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.ComplaintHistory{}, nil
	}
	return s.history.ListByComplaint(ctx, id)
}

// Categories returns the categories offered when filing.
func (s *ComplaintService) Categories() []string {
	return append([]string(nil), domain.Categories...)
}

func (s *ComplaintService) readable(ctx context.Context, actor domain.Actor, id string) (*domain.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("complaint id is required", nil)
	}
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy.VisibilityOf(actor, complaint) == policy.None {
		return nil, apperrors.NewForbidden("complaint is not visible to this actor")
	}
	return complaint, nil
}

func (s *ComplaintService) checkUpload(upload Upload) error {
	if len(upload.Body) == 0 {
		return apperrors.NewValidationError("file is empty", nil)
	}
	if s.maxUploadBytes > 0 && len(upload.Body) > s.maxUploadBytes {
		return apperrors.NewValidationError("file too large", map[string]any{"max_bytes": s.maxUploadBytes})
	}
	return nil
}

func (s *ComplaintService) mutationFailed(err error, op, id string, actor domain.Actor) error {
	if errors.Is(err, apperrors.ErrConflict) {
		s.metrics.RecordConflict()
		s.logger.Info("complaint update conflict",
			zap.String("op", op),
			zap.String("complaint_id", id),
			zap.String("actor_id", actor.ID))
	}
	return err
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func withExpected(complaint *domain.Complaint, expected *time.Time) {
	if expected != nil {
		complaint.UpdatedAt = expected.UTC().Truncate(time.Microsecond)
	}
}

func changedFields(change lifecycle.ContentChange) []string {
	var fields []string
	if change.Title != nil {
		fields = append(fields, "title")
	}
	if change.Description != nil {
		fields = append(fields, "description")
	}
	if change.Category != nil {
		fields = append(fields, "category")
	}
	if change.AttachmentRef != nil {
		fields = append(fields, "attachment_ref")
	}
	return fields
}
