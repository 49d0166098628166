package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestHistoryRecordsEveryMutation(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{now: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)}
	dispatcher := events.NewInMemoryDispatcher()
	history := repository.NewInMemoryComplaintHistoryRepository()
	NewHistoryRecorder(dispatcher, history, zap.NewNop()).RegisterHandlers()

	svc := NewComplaintService(ComplaintDependencies{
		ComplaintRepo: repository.NewInMemoryComplaintRepository(clock.Now),
		ProfileRepo:   repository.NewInMemoryProfileRepository(),
		HistoryRepo:   history,
		Dispatcher:    dispatcher,
		Clock:         clock.Now,
	})

	c, err := svc.CreateComplaint(ctx, owner, CreateComplaintInput{Title: "t", Description: "d", Category: "Other"})
	require.NoError(t, err)
	_, err = svc.UpdatePriority(ctx, staff, c.ID, "urgent", nil)
	require.NoError(t, err)
	_, err = svc.TransitionStatus(ctx, staff, c.ID, "resolved", nil)
	require.NoError(t, err)
	title := "better"
	_, err = svc.EditComplaint(ctx, staff, c.ID, EditComplaintInput{Title: &title}, nil)
	require.NoError(t, err)

	entries, err := svc.History(ctx, owner, c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, domain.ChangeTypeCreated, entries[0].ChangeType)
	assert.Equal(t, owner.ID, entries[0].ChangedByID)
	assert.Equal(t, domain.ChangeTypePriority, entries[1].ChangeType)
	assert.Equal(t, domain.PriorityMedium, entries[1].OldValue["priority"])
	assert.Equal(t, domain.ChangeTypeStatus, entries[2].ChangeType)
	assert.Equal(t, domain.StatusResolved, entries[2].NewValue["status"])
	assert.Equal(t, domain.RoleStaff, entries[2].ChangedByRole)
	assert.Equal(t, domain.ChangeTypeContent, entries[3].ChangeType)
	assert.Equal(t, []string{"title"}, entries[3].NewValue["fields"])

	_, err = svc.History(ctx, stranger, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestHistoryRecorderIsIdempotentPerEvent(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	history := repository.NewInMemoryComplaintHistoryRepository()
	NewHistoryRecorder(dispatcher, history, nil).RegisterHandlers()

	event := events.NewEvent(events.EventComplaintStatusChanged, "c1", staff, time.Now().UTC(),
		events.ComplaintStatusChangedPayload{OldStatus: domain.StatusPending, NewStatus: domain.StatusRejected})
	require.NoError(t, dispatcher.Publish(ctx, event))
	require.NoError(t, dispatcher.Publish(ctx, event))

	entries, err := history.ListByComplaint(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
