package orchestrator

import (
	"context"

	"foodshare/internal/listing"
	"foodshare/internal/user"
)

func (o *Orchestrator) CreateListing(ctx context.Context, userID int64, in listing.CreateInput) (*listing.Listing, error) {
	return invoke(ctx, o, "listing.create", userID, func(ctx context.Context, p user.Principal) (*listing.Listing, error) {
		return o.listings.Create(ctx, p, in)
	})
}

func (o *Orchestrator) GetListing(ctx context.Context, userID, id int64) (*listing.Listing, error) {
	return invoke(ctx, o, "listing.get", userID, func(ctx context.Context, p user.Principal) (*listing.Listing, error) {
		return o.listings.Get(ctx, p, id)
	})
}

func (o *Orchestrator) ClaimListing(ctx context.Context, userID, id int64) (*listing.Listing, error) {
	return invoke(ctx, o, "listing.claim", userID, func(ctx context.Context, p user.Principal) (*listing.Listing, error) {
		return o.listings.Claim(ctx, p, id)
	})
}

func (o *Orchestrator) ApproveListing(ctx context.Context, userID, id int64) (*listing.Listing, error) {
	return invoke(ctx, o, "listing.approve", userID, func(ctx context.Context, p user.Principal) (*listing.Listing, error) {
		return o.listings.Approve(ctx, p, id)
	})
}

func (o *Orchestrator) ConfirmListingPickup(ctx context.Context, userID, id int64) (*listing.Listing, error) {
	return invoke(ctx, o, "listing.pickup", userID, func(ctx context.Context, p user.Principal) (*listing.Listing, error) {
		return o.listings.ConfirmPickup(ctx, p, id)
	})
}

func (o *Orchestrator) ExpireListing(ctx context.Context, userID, id int64) (*listing.Listing, error) {
	return invoke(ctx, o, "listing.expire", userID, func(ctx context.Context, p user.Principal) (*listing.Listing, error) {
		return o.listings.Expire(ctx, p, id)
	})
}
