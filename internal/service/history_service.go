package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// HistoryRecorder turns complaint events into audit trail entries.
type HistoryRecorder struct {
	dispatcher events.Dispatcher
	history    repository.ComplaintHistoryRepository
	logger     *zap.Logger
}

// NewHistoryRecorder creates the recorder.
func NewHistoryRecorder(dispatcher events.Dispatcher, history repository.ComplaintHistoryRepository, logger *zap.Logger) *HistoryRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryRecorder{dispatcher: dispatcher, history: history, logger: logger}
}

// RegisterHandlers subscribes to every complaint event.
func (h *HistoryRecorder) RegisterHandlers() {
	if h.dispatcher == nil || h.history == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventComplaintCreated,
		events.EventComplaintStatusChanged,
		events.EventComplaintPriorityChanged,
		events.EventComplaintUpdated,
	} {
		h.dispatcher.Subscribe(t, h.record)
	}
}

func (h *HistoryRecorder) record(ctx context.Context, event events.Event) error {
	entry := domain.ComplaintHistory{
		ID:            event.ID,
		ComplaintID:   event.ComplaintID,
		ChangedByID:   event.Actor.ID,
		ChangedByRole: event.Actor.Role,
		CreatedAt:     event.Timestamp,
	}
	switch p := event.Payload.(type) {
	case events.ComplaintCreatedPayload:
		entry.ChangeType = domain.ChangeTypeCreated
		entry.NewValue = map[string]any{"status": domain.StatusPending, "priority": p.Priority, "category": p.Category}
	case events.ComplaintStatusChangedPayload:
		entry.ChangeType = domain.ChangeTypeStatus
		entry.OldValue = map[string]any{"status": p.OldStatus}
		entry.NewValue = map[string]any{"status": p.NewStatus}
	case events.ComplaintPriorityChangedPayload:
		entry.ChangeType = domain.ChangeTypePriority
		entry.OldValue = map[string]any{"priority": p.OldPriority}
		entry.NewValue = map[string]any{"priority": p.NewPriority}
	case events.ComplaintUpdatedPayload:
		entry.ChangeType = domain.ChangeTypeContent
		entry.NewValue = map[string]any{"fields": p.Fields}
	default:
		return nil
	}

	if err := h.history.Create(ctx, &entry); err != nil {
		h.logger.Warn("failed to record complaint history",
			zap.String("complaint_id", event.ComplaintID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
