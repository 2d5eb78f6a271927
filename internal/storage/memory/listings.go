package memory

import (
	"context"
	"time"

	"foodshare/internal/apperr"
	"foodshare/internal/listing"
)

type ListingRepository struct{ s *Store }

func copyListing(l *listing.Listing) *listing.Listing {
	cp := *l
	if l.ClaimantID != nil {
		id := *l.ClaimantID
		cp.ClaimantID = &id
	}
	return &cp
}

func (r *ListingRepository) Create(_ context.Context, l *listing.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l.ID = r.s.nextID()
	r.s.listings[l.ID] = copyListing(l)
	return nil
}

func (r *ListingRepository) GetByID(_ context.Context, id int64) (*listing.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.listings[id]
	if !ok {
		return nil, apperr.NotFound("listing.get", "listing %d not found", id)
	}
	return copyListing(l), nil
}

func (r *ListingRepository) Claim(_ context.Context, id, claimantID int64, now time.Time) (*listing.Listing, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[id]
	if !ok {
		return nil, false, apperr.NotFound("listing.claim", "listing %d not found", id)
	}
	if l.Status != listing.StatusAvailable {
		return nil, false, nil
	}
	l.Status = listing.StatusClaimed
	l.ClaimantID = &claimantID
	l.UpdatedAt = now
	return copyListing(l), true, nil
}

func (r *ListingRepository) UpdateStatusIf(_ context.Context, id int64, from, to listing.Status, now time.Time) (*listing.Listing, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[id]
	if !ok {
		return nil, false, apperr.NotFound("listing.update", "listing %d not found", id)
	}
	if l.Status != from {
		return nil, false, nil
	}
	l.Status = to
	l.UpdatedAt = now
	return copyListing(l), true, nil
}
