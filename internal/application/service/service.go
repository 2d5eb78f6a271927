package service

import (
	"context"
	"time"

	"foodshare/internal/apperr"
	"foodshare/internal/application"
	"foodshare/internal/authz"
	"foodshare/internal/listing"
	"foodshare/internal/metrics"
	"foodshare/internal/user"
	"foodshare/pkg/logger"
)

type Authorizer interface {
	Authorize(p user.Principal, a authz.Action, r authz.Resource) error
}

// ListingLookup resolves the listing an application refers to, with lazy
// expiry applied.
type ListingLookup interface {
	Lookup(ctx context.Context, id int64) (*listing.Listing, error)
}

type Service struct {
	repo     application.Repository
	listings ListingLookup
	authz    Authorizer
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo application.Repository, listings ListingLookup, az Authorizer, log logger.Logger) *Service {
	return &Service{repo: repo, listings: listings, authz: az, log: log, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func resource(a *application.Application, l *listing.Listing) authz.Resource {
	return authz.Resource{
		Kind:     authz.KindApplication,
		ID:       a.ID,
		OwnerID:  l.OwnerID,
		SeekerID: a.SeekerID,
	}
}

// Create files a pending application. The listing itself is left untouched;
// competing applications coexist until the owner decides.
func (s *Service) Create(ctx context.Context, actor user.Principal, listingID int64, d application.Details) (*application.Application, error) {
	l, err := s.listings.Lookup(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ApplicationCreate, authz.Resource{
		Kind:    authz.KindListing,
		ID:      l.ID,
		OwnerID: l.OwnerID,
	}); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if d.BeneficiariesCount < 0 {
		return nil, apperr.Validation("application.create", "beneficiaries_count must not be negative")
	}
	if d.PreferredPickupTime != nil && d.PreferredPickupTime.Before(now) {
		return nil, apperr.Validation("application.create", "preferred pickup time is in the past")
	}
	if l.Status != listing.StatusAvailable {
		return nil, apperr.InvalidTransition("application.create", "listing %d is %s and not accepting applications", l.ID, l.Status)
	}

	a := &application.Application{
		ListingID:           l.ID,
		SeekerID:            actor.ID,
		Status:              application.StatusPending,
		Message:             d.Message,
		BeneficiariesCount:  d.BeneficiariesCount,
		PreferredPickupTime: d.PreferredPickupTime,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info("application created", map[string]interface{}{
		"application_id": a.ID,
		"listing_id":     l.ID,
		"seeker_id":      actor.ID,
	})
	return a, nil
}

// UpdateStatus is the listing owner's (or an admin's) decision on an application.
func (s *Service) UpdateStatus(ctx context.Context, actor user.Principal, id int64, to application.Status) (*application.Application, error) {
	if to != application.StatusApproved && to != application.StatusRejected && to != application.StatusCollected {
		return nil, apperr.Validation("application.update_status", "status %q cannot be requested", to)
	}

	a, l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ApplicationDecide, resource(a, l)); err != nil {
		return nil, err
	}
	return s.move(ctx, "application.update_status", a, to)
}

// ConfirmPickup is the seeker's acknowledgement that they collected the food.
func (s *Service) ConfirmPickup(ctx context.Context, actor user.Principal, id int64) (*application.Application, error) {
	a, l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ApplicationConfirmPickup, resource(a, l)); err != nil {
		return nil, err
	}
	if a.Status != application.StatusApproved {
		return nil, apperr.InvalidTransition("application.confirm_pickup", "application %d must be approved, is %s", a.ID, a.Status)
	}
	return s.move(ctx, "application.confirm_pickup", a, application.StatusCollected)
}

func (s *Service) Get(ctx context.Context, actor user.Principal, id int64) (*application.Application, error) {
	a, l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, authz.ApplicationRead, resource(a, l)); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByListing returns every application on a listing, oldest first.
func (s *Service) ListByListing(ctx context.Context, listingID int64) ([]application.Application, error) {
	return s.repo.ListByListing(ctx, listingID)
}

// Reject turns a pending application down without an actor check; used for
// policy-driven rejections. ok is false when the application was no longer pending.
func (s *Service) Reject(ctx context.Context, id int64) (bool, error) {
	_, ok, err := s.repo.UpdateStatusIf(ctx, id, application.StatusPending, application.StatusRejected, s.now().UTC())
	if err != nil {
		return false, err
	}
	if ok {
		metrics.Transition("application", string(application.StatusPending), string(application.StatusRejected))
	}
	return ok, nil
}

func (s *Service) load(ctx context.Context, id int64) (*application.Application, *listing.Listing, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	l, err := s.listings.Lookup(ctx, a.ListingID)
	if err != nil {
		return nil, nil, err
	}
	return a, l, nil
}

func (s *Service) move(ctx context.Context, op string, a *application.Application, to application.Status) (*application.Application, error) {
	if !application.CanTransition(a.Status, to) {
		return nil, apperr.InvalidTransition(op, "application %d cannot move from %s to %s", a.ID, a.Status, to)
	}
	next, ok, err := s.repo.UpdateStatusIf(ctx, a.ID, a.Status, to, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.repo.GetByID(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if !application.CanTransition(current.Status, to) {
			return nil, apperr.InvalidTransition(op, "application %d cannot move from %s to %s", a.ID, current.Status, to)
		}
		return nil, apperr.Conflict(op, "application %d changed concurrently", a.ID)
	}

	metrics.Transition("application", string(a.Status), string(to))
	s.log.Info("application status changed", map[string]interface{}{
		"application_id": a.ID,
		"from":           string(a.Status),
		"to":             string(to),
	})
	return next, nil
}
