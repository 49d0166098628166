package service

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// withOwners wraps complaints into views. When join is set the owner summaries are
// fetched in a single GetMany call keyed by the distinct owner ids.
func withOwners(ctx context.Context, profiles repository.ProfileRepository, complaints []domain.Complaint, join bool) ([]domain.ComplaintView, error) {
	views := make([]domain.ComplaintView, len(complaints))
	for i := range complaints {
		views[i] = domain.ComplaintView{Complaint: complaints[i]}
	}
	if !join || len(complaints) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{}, len(complaints))
	ids := make([]string, 0, len(complaints))
	for i := range complaints {
		id := complaints[i].OwnerID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	owners, err := profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if p, ok := owners[views[i].OwnerID]; ok {
			summary := p.Summary()
			views[i].Owner = &summary
		}
	}
	return views, nil
}
