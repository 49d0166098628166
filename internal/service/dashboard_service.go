package service

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/policy"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// DashboardService computes aggregate views over the complaints an actor can read.
type DashboardService struct {
	complaints  repository.ComplaintRepository
	profiles    repository.ProfileRepository
	recentLimit int
}

// NewDashboardService constructs the service. recentLimit <= 0 defaults to 5.
func NewDashboardService(complaints repository.ComplaintRepository, profiles repository.ProfileRepository, recentLimit int) *DashboardService {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &DashboardService{complaints: complaints, profiles: profiles, recentLimit: recentLimit}
}

// Tally counts complaints per status. Unset or unknown statuses count as pending.
func Tally(complaints []domain.Complaint) domain.ComplaintStats {
	var stats domain.ComplaintStats
	for i := range complaints {
		stats.Total++
		switch complaints[i].Status.Normalized() {
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusResolved:
			stats.Resolved++
		case domain.StatusRejected:
			stats.Rejected++
		default:
			stats.Pending++
		}
	}
	return stats
}

// Stats tallies the complaints visible to actor.
func (s *DashboardService) Stats(ctx context.Context, actor domain.Actor) (domain.ComplaintStats, error) {
	visible, err := policy.List(ctx, actor, s.complaints, 0)
	if err != nil {
		return domain.ComplaintStats{}, err
	}
	return Tally(visible), nil
}

// Recent returns the newest n visible complaints with owner summaries. n <= 0 uses
// the configured default.
func (s *DashboardService) Recent(ctx context.Context, actor domain.Actor, n int) ([]domain.ComplaintView, error) {
	if n <= 0 {
		n = s.recentLimit
	}
	visible, err := policy.List(ctx, actor, s.complaints, n)
	if err != nil {
		return nil, err
	}
	return withOwners(ctx, s.profiles, visible, true)
}
