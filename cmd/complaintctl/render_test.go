package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestRenderComplaintsShowsOwnerAndNormalizedStatus(t *testing.T) {
	var buf bytes.Buffer
	renderComplaints(&buf, []domain.ComplaintView{{
		Complaint: domain.Complaint{ID: "c1", OwnerID: "u1", Title: "Late", CreatedAt: time.Unix(0, 0).UTC()},
		Owner:     &domain.OwnerSummary{ID: "u1", DisplayName: "Una"},
	}})
	out := buf.String()
	assert.Contains(t, out, "Una")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "TOTAL")
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	renderStats(&buf, domain.ComplaintStats{Total: 3, Pending: 2, Resolved: 1})
	assert.Contains(t, buf.String(), "IN PROGRESS")
}
