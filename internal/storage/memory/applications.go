package memory

import (
	"context"
	"sort"
	"time"

	"foodshare/internal/apperr"
	"foodshare/internal/application"
)

type ApplicationRepository struct{ s *Store }

func copyApplication(a *application.Application) *application.Application {
	cp := *a
	if a.PreferredPickupTime != nil {
		t := *a.PreferredPickupTime
		cp.PreferredPickupTime = &t
	}
	return &cp
}

func (r *ApplicationRepository) Create(_ context.Context, a *application.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.listings[a.ListingID]; !ok {
		return apperr.NotFound("application.create", "listing %d not found", a.ListingID)
	}
	a.ID = r.s.nextID()
	r.s.applications[a.ID] = copyApplication(a)
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id int64) (*application.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.applications[id]
	if !ok {
		return nil, apperr.NotFound("application.get", "application %d not found", id)
	}
	return copyApplication(a), nil
}

func (r *ApplicationRepository) ListByListing(_ context.Context, listingID int64) ([]application.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []application.Application{}
	for _, a := range r.s.applications {
		if a.ListingID == listingID {
			out = append(out, *copyApplication(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ApplicationRepository) UpdateStatusIf(_ context.Context, id int64, from, to application.Status, now time.Time) (*application.Application, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok {
		return nil, false, apperr.NotFound("application.update", "application %d not found", id)
	}
	if a.Status != from {
		return nil, false, nil
	}
	a.Status = to
	a.UpdatedAt = now
	return copyApplication(a), true, nil
}
