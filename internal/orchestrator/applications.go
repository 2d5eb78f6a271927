package orchestrator

import (
	"context"

	"foodshare/internal/apperr"
	"foodshare/internal/application"
	"foodshare/internal/authz"
	"foodshare/internal/user"
)

func (o *Orchestrator) CreateApplication(ctx context.Context, userID, listingID int64, d application.Details) (*application.Application, error) {
	return invoke(ctx, o, "application.create", userID, func(ctx context.Context, p user.Principal) (*application.Application, error) {
		return o.applications.Create(ctx, p, listingID, d)
	})
}

func (o *Orchestrator) GetApplication(ctx context.Context, userID, id int64) (*application.Application, error) {
	return invoke(ctx, o, "application.get", userID, func(ctx context.Context, p user.Principal) (*application.Application, error) {
		return o.applications.Get(ctx, p, id)
	})
}

func (o *Orchestrator) UpdateApplicationStatus(ctx context.Context, userID, id int64, to application.Status) (*application.Application, error) {
	return invoke(ctx, o, "application.update_status", userID, func(ctx context.Context, p user.Principal) (*application.Application, error) {
		if o.policy != PolicyExclusive {
			return o.applications.UpdateStatus(ctx, p, id, to)
		}
		switch to {
		case application.StatusApproved:
			return o.approveExclusive(ctx, p, id)
		case application.StatusCollected:
			a, err := o.applications.UpdateStatus(ctx, p, id, to)
			if err != nil {
				return nil, err
			}
			o.completeListing(ctx, a)
			return a, nil
		}
		return o.applications.UpdateStatus(ctx, p, id, to)
	})
}

func (o *Orchestrator) ConfirmApplicationPickup(ctx context.Context, userID, id int64) (*application.Application, error) {
	return invoke(ctx, o, "application.confirm_pickup", userID, func(ctx context.Context, p user.Principal) (*application.Application, error) {
		a, err := o.applications.ConfirmPickup(ctx, p, id)
		if err != nil {
			return nil, err
		}
		if o.policy == PolicyExclusive {
			o.completeListing(ctx, a)
		}
		return a, nil
	})
}

// approveExclusive reserves the listing before approving so that a lost race
// leaves the application pending. Competing pending applications are rejected
// once the approval is committed; the approval is returned even if some of
// those rejections fail.
func (o *Orchestrator) approveExclusive(ctx context.Context, p user.Principal, id int64) (*application.Application, error) {
	const op = "application.update_status"

	a, err := o.applications.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	l, err := o.listings.Lookup(ctx, a.ListingID)
	if err != nil {
		return nil, err
	}
	if err := o.authz.Authorize(p, authz.ApplicationDecide, authz.Resource{
		Kind:     authz.KindApplication,
		ID:       a.ID,
		OwnerID:  l.OwnerID,
		SeekerID: a.SeekerID,
	}); err != nil {
		return nil, err
	}
	if !application.CanTransition(a.Status, application.StatusApproved) {
		return nil, apperr.InvalidTransition(op, "application %d cannot move from %s to %s", a.ID, a.Status, application.StatusApproved)
	}

	if _, err := o.listings.Reserve(ctx, a.ListingID); err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindConflict, apperr.KindInvalidTransition:
			return nil, apperr.Conflict(op, "listing %d is no longer available for application %d", a.ListingID, a.ID)
		}
		return nil, err
	}

	approved, err := o.applications.UpdateStatus(ctx, p, id, application.StatusApproved)
	if err != nil {
		if _, relErr := o.listings.Release(ctx, a.ListingID); relErr != nil {
			o.log.Error("failed to release listing after aborted approval", map[string]interface{}{
				"listing_id":     a.ListingID,
				"application_id": a.ID,
				"error":          relErr,
			})
		}
		return nil, err
	}

	// Одобрение уже зафиксировано: ошибки при отклонении конкурентов только логируем.
	rejected, failed := o.rejectCompetitors(ctx, approved)

	o.log.Info("application approved exclusively", map[string]interface{}{
		"application_id": approved.ID,
		"listing_id":     approved.ListingID,
		"rejected":       rejected,
		"reject_failed":  failed,
	})
	return approved, nil
}

// rejectCompetitors moves the other pending applications on the listing to
// rejected. A failure leaves that application pending; it can no longer be
// approved because the listing is reserved.
func (o *Orchestrator) rejectCompetitors(ctx context.Context, approved *application.Application) (rejected, failed int) {
	competitors, err := o.applications.ListByListing(ctx, approved.ListingID)
	if err != nil {
		o.log.Error("failed to list competing applications", map[string]interface{}{
			"listing_id":     approved.ListingID,
			"application_id": approved.ID,
			"error":          err,
		})
		return 0, 0
	}
	for _, c := range competitors {
		if c.ID == approved.ID || c.Status != application.StatusPending {
			continue
		}
		ok, err := o.applications.Reject(ctx, c.ID)
		if err != nil {
			failed++
			o.log.Error("failed to reject competing application", map[string]interface{}{
				"listing_id":     approved.ListingID,
				"application_id": c.ID,
				"error":          err,
			})
			continue
		}
		if ok {
			rejected++
		}
	}
	return rejected, failed
}

// completeListing closes a reserved listing once its application is collected.
// The application outcome stands even if the listing moved on meanwhile.
func (o *Orchestrator) completeListing(ctx context.Context, a *application.Application) {
	if _, err := o.listings.Complete(ctx, a.ListingID); err != nil {
		o.log.Warn("listing not completed after collection", map[string]interface{}{
			"listing_id":     a.ListingID,
			"application_id": a.ID,
			"error":          err,
		})
	}
}
