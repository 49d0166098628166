package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComplaintStatusNormalized(t *testing.T) {
	assert.Equal(t, StatusPending, ComplaintStatus("").Normalized())
	assert.Equal(t, StatusPending, ComplaintStatus("archived").Normalized())
	assert.Equal(t, StatusInProgress, StatusInProgress.Normalized())
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Staff ")
	assert.True(t, ok)
	assert.Equal(t, RoleStaff, role)
	assert.True(t, role.Privileged())

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestActorFromProfileDefaultsUnknownRole(t *testing.T) {
	actor := ActorFromProfile(&Profile{ID: "u1", Role: "root", DisplayName: "Dana"})
	assert.Equal(t, RoleUser, actor.Role)
	assert.Equal(t, "Dana", actor.DisplayName)
}

func TestComplaintCloneIsDeep(t *testing.T) {
	ref := "https://cdn/u1/1.png"
	now := time.Now()
	c := Complaint{ID: "c1", AttachmentRef: &ref, ResolvedAt: &now}

	cp := c.Clone()
	*cp.AttachmentRef = "changed"
	*cp.ResolvedAt = now.Add(time.Hour)

	assert.Equal(t, "https://cdn/u1/1.png", *c.AttachmentRef)
	assert.True(t, c.ResolvedAt.Equal(now))
}
