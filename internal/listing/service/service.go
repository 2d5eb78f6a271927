package service

import (
	"context"
	"strings"
	"time"

	"foodshare/internal/apperr"
	"foodshare/internal/authz"
	"foodshare/internal/listing"
	"foodshare/internal/metrics"
	"foodshare/internal/user"
	"foodshare/pkg/logger"
)

type Authorizer interface {
	Authorize(p user.Principal, a authz.Action, r authz.Resource) error
}

type Service struct {
	repo       listing.Repository
	authz      Authorizer
	log        logger.Logger
	now        func() time.Time
	moderation bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithModeration makes new listings start pending until an admin approves them.
func WithModeration(enabled bool) Option {
	return func(s *Service) { s.moderation = enabled }
}

func NewService(repo listing.Repository, az Authorizer, log logger.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, authz: az, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func Resource(l *listing.Listing) authz.Resource {
	return authz.Resource{
		Kind:       authz.KindListing,
		ID:         l.ID,
		OwnerID:    l.OwnerID,
		ClaimantID: l.ClaimantID,
	}
}

func (s *Service) Create(ctx context.Context, actor user.Principal, in listing.CreateInput) (*listing.Listing, error) {
	if err := s.authz.Authorize(actor, authz.ListingCreate, authz.Resource{Kind: authz.KindListing}); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("listing.create", "title is required")
	}
	if !in.ExpiresAt.After(now) {
		return nil, apperr.Validation("listing.create", "expiry %s is not in the future", in.ExpiresAt.Format(time.RFC3339))
	}

	status := listing.StatusAvailable
	if s.moderation {
		status = listing.StatusPending
	}

	l := &listing.Listing{
		OwnerID:        actor.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Quantity:       in.Quantity,
		Category:       in.Category,
		PickupLocation: in.PickupLocation,
		Status:         status,
		ExpiresAt:      in.ExpiresAt.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.log.Info("listing created", map[string]interface{}{
		"listing_id": l.ID,
		"owner_id":   l.OwnerID,
		"status":     string(l.Status),
	})
	return l, nil
}

// Get reads a listing, expiring it first if its deadline has passed.
func (s *Service) Get(ctx context.Context, actor user.Principal, id int64) (*listing.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ListingRead, Resource(l)); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Claim(ctx context.Context, actor user.Principal, id int64) (*listing.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ListingClaim, Resource(l)); err != nil {
		return nil, err
	}
	if l.Status != listing.StatusAvailable {
		return nil, s.claimRejection(l)
	}

	claimed, ok, err := s.repo.Claim(ctx, id, actor.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the compare-and-set; report what the winner left behind
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, s.claimRejection(current)
	}

	metrics.Transition("listing", string(listing.StatusAvailable), string(listing.StatusClaimed))
	s.log.Info("listing claimed", map[string]interface{}{"listing_id": id, "claimant_id": actor.ID})
	return claimed, nil
}

func (s *Service) claimRejection(l *listing.Listing) error {
	switch l.Status {
	case listing.StatusClaimed:
		return apperr.Conflict("listing.claim", "listing %d is already claimed", l.ID)
	case listing.StatusReserved:
		return apperr.Conflict("listing.claim", "listing %d is reserved for an approved application", l.ID)
	}
	return apperr.InvalidTransition("listing.claim", "listing %d is %s, not available", l.ID, l.Status)
}

// Approve is the moderation step: pending -> available.
func (s *Service) Approve(ctx context.Context, actor user.Principal, id int64) (*listing.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ListingApprove, Resource(l)); err != nil {
		return nil, err
	}
	return s.move(ctx, "listing.approve", l, listing.StatusPending, listing.StatusAvailable)
}

// ConfirmPickup records that the claimant collected the food: claimed -> picked_up.
func (s *Service) ConfirmPickup(ctx context.Context, actor user.Principal, id int64) (*listing.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ListingPickup, Resource(l)); err != nil {
		return nil, err
	}
	return s.move(ctx, "listing.pickup", l, listing.StatusClaimed, listing.StatusPickedUp)
}

// Expire is idempotent. A listing that is not yet due, already terminal, or
// held by a claimant is returned unchanged.
func (s *Service) Expire(ctx context.Context, actor user.Principal, id int64) (*listing.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ListingExpire, Resource(l)); err != nil {
		return nil, err
	}
	return s.expireIfDue(ctx, l)
}

// Lookup reads a listing with lazy expiry applied and no authorization
// check. Callers authorize against the returned listing themselves.
func (s *Service) Lookup(ctx context.Context, id int64) (*listing.Listing, error) {
	return s.load(ctx, id)
}

// Reserve, Release and Complete are driven by the application policy, not by
// end users, so they carry no authorization check of their own.

func (s *Service) Reserve(ctx context.Context, id int64) (*listing.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := s.move(ctx, "listing.reserve", l, listing.StatusAvailable, listing.StatusReserved)
	if apperr.KindOf(err) == apperr.KindInvalidTransition {
		switch l.Status {
		case listing.StatusClaimed, listing.StatusReserved:
			return nil, apperr.Conflict("listing.reserve", "listing %d is already %s", id, l.Status)
		}
	}
	return next, err
}

func (s *Service) Release(ctx context.Context, id int64) (*listing.Listing, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, "listing.release", l, listing.StatusReserved, listing.StatusAvailable)
}

func (s *Service) Complete(ctx context.Context, id int64) (*listing.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, "listing.complete", l, listing.StatusReserved, listing.StatusCollected)
}

// move performs one compare-and-set transition from an expected state.
func (s *Service) move(ctx context.Context, op string, l *listing.Listing, from, to listing.Status) (*listing.Listing, error) {
	if l.Status != from {
		return nil, apperr.InvalidTransition(op, "listing %d is %s, expected %s", l.ID, l.Status, from)
	}
	next, ok, err := s.repo.UpdateStatusIf(ctx, l.ID, from, to, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict(op, "listing %d changed concurrently", l.ID)
	}
	metrics.Transition("listing", string(from), string(to))
	s.log.Info("listing status changed", map[string]interface{}{
		"listing_id": l.ID,
		"from":       string(from),
		"to":         string(to),
	})
	return next, nil
}

// load reads a listing and applies lazy expiry.
func (s *Service) load(ctx context.Context, id int64) (*listing.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expireIfDue(ctx, l)
}

func (s *Service) expireIfDue(ctx context.Context, l *listing.Listing) (*listing.Listing, error) {
	now := s.now().UTC()
	if !l.Expirable(now) {
		return l, nil
	}
	expired, ok, err := s.repo.UpdateStatusIf(ctx, l.ID, l.Status, listing.StatusExpired, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// someone else moved it first; their write wins
		return s.repo.GetByID(ctx, l.ID)
	}
	metrics.Transition("listing", string(l.Status), string(listing.StatusExpired))
	s.log.Debug("listing expired", map[string]interface{}{"listing_id": l.ID})
	return expired, nil
}
