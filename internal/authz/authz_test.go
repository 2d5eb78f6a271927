package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"foodshare/internal/apperr"
	"foodshare/internal/user"
)

var (
	donor     = user.Principal{ID: 1, Role: user.RoleDonor}
	receiver  = user.Principal{ID: 2, Role: user.RoleReceiver}
	other     = user.Principal{ID: 3, Role: user.RoleReceiver}
	admin     = user.Principal{ID: 10, Role: user.RoleAdmin}
	mainAdmin = user.Principal{ID: 11, Role: user.RoleMainAdmin}
)

func int64p(v int64) *int64 { return &v }

func TestEvaluator_Decide(t *testing.T) {
	e := NewEvaluator()

	listing := Resource{Kind: KindListing, ID: 5, OwnerID: donor.ID}
	claimed := Resource{Kind: KindListing, ID: 6, OwnerID: donor.ID, ClaimantID: int64p(receiver.ID)}
	app := Resource{Kind: KindApplication, ID: 7, OwnerID: donor.ID, SeekerID: receiver.ID}

	tests := []struct {
		name string
		p    user.Principal
		a    Action
		r    Resource
		want Decision
	}{
		{"donor creates listing", donor, ListingCreate, Resource{Kind: KindListing}, Allow},
		{"receiver cannot create listing", receiver, ListingCreate, Resource{Kind: KindListing}, Deny},
		{"admin cannot create listing", admin, ListingCreate, Resource{Kind: KindListing}, Deny},
		{"receiver claims", receiver, ListingClaim, listing, Allow},
		{"donor cannot claim", donor, ListingClaim, listing, Deny},
		{"admin cannot claim", admin, ListingClaim, listing, Deny},
		{"main admin cannot claim", mainAdmin, ListingClaim, listing, Deny},
		{"anyone reads listings", other, ListingRead, listing, Allow},
		{"owner expires", donor, ListingExpire, listing, Allow},
		{"stranger cannot expire", other, ListingExpire, listing, Deny},
		{"claimant confirms pickup", receiver, ListingPickup, claimed, Allow},
		{"owner confirms pickup", donor, ListingPickup, claimed, Allow},
		{"stranger cannot confirm pickup", other, ListingPickup, claimed, Deny},
		{"admin approves listing", admin, ListingApprove, listing, Allow},
		{"owner cannot approve own listing", donor, ListingApprove, listing, Deny},

		{"receiver applies", receiver, ApplicationCreate, listing, Allow},
		{"donor cannot apply", donor, ApplicationCreate, listing, Deny},
		{"listing owner decides", donor, ApplicationDecide, app, Allow},
		{"seeker cannot decide own application", receiver, ApplicationDecide, app, Deny},
		{"other seeker cannot decide", other, ApplicationDecide, app, Deny},
		{"admin decides", admin, ApplicationDecide, app, Allow},
		{"main admin decides", mainAdmin, ApplicationDecide, app, Allow},
		{"seeker confirms pickup", receiver, ApplicationConfirmPickup, app, Allow},
		{"owner cannot confirm seeker pickup", donor, ApplicationConfirmPickup, app, Deny},
		{"admin cannot confirm seeker pickup", admin, ApplicationConfirmPickup, app, Deny},
		{"seeker reads application", receiver, ApplicationRead, app, Allow},
		{"stranger cannot read application", other, ApplicationRead, app, Deny},

		{"user initiates own payment", receiver, PaymentInitiate, Resource{Kind: KindPayment, UserID: receiver.ID}, Allow},
		{"user cannot initiate for another", receiver, PaymentInitiate, Resource{Kind: KindPayment, UserID: donor.ID}, Deny},
		{"admin initiates own payment", admin, PaymentInitiate, Resource{Kind: KindPayment, UserID: admin.ID}, Allow},
		{"admin cannot initiate for another", admin, PaymentInitiate, Resource{Kind: KindPayment, UserID: donor.ID}, Deny},
		{"admin reads payments", admin, PaymentRead, Resource{Kind: KindPayment, UserID: donor.ID}, Allow},
		{"user reads own subscription", donor, SubscriptionRead, Resource{Kind: KindSubscription, UserID: donor.ID}, Allow},
		{"user cannot read other subscription", donor, SubscriptionRead, Resource{Kind: KindSubscription, UserID: receiver.ID}, Deny},

		{"main admin deletes admin", mainAdmin, UserDelete, Resource{Kind: KindUser, UserID: admin.ID, TargetRole: user.RoleAdmin}, Allow},
		{"main admin cannot delete itself", mainAdmin, UserDelete, Resource{Kind: KindUser, UserID: mainAdmin.ID, TargetRole: user.RoleMainAdmin}, Deny},
		{"admin deletes donor", admin, UserDelete, Resource{Kind: KindUser, UserID: donor.ID, TargetRole: user.RoleDonor}, Allow},
		{"admin cannot delete admin", admin, UserDelete, Resource{Kind: KindUser, UserID: 99, TargetRole: user.RoleAdmin}, Deny},
		{"admin cannot delete main admin", admin, UserDelete, Resource{Kind: KindUser, UserID: mainAdmin.ID, TargetRole: user.RoleMainAdmin}, Deny},
		{"admin verifies user", admin, UserVerify, Resource{Kind: KindUser, UserID: donor.ID, TargetRole: user.RoleDonor}, Allow},
		{"donor cannot verify", donor, UserVerify, Resource{Kind: KindUser, UserID: donor.ID, TargetRole: user.RoleDonor}, Deny},
		{"user reads self", donor, UserRead, Resource{Kind: KindUser, UserID: donor.ID}, Allow},

		{"main admin updates settings", mainAdmin, SettingsUpdate, Resource{Kind: KindSettings}, Allow},
		{"admin cannot update settings", admin, SettingsUpdate, Resource{Kind: KindSettings}, Deny},
		{"donor cannot update settings", donor, SettingsUpdate, Resource{Kind: KindSettings}, Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Decide(tt.p, tt.a, tt.r))
		})
	}
}

func TestEvaluator_NoRulesDenies(t *testing.T) {
	e := NewEvaluatorWithRules()
	assert.Equal(t, Deny, e.Decide(mainAdmin, ListingRead, Resource{Kind: KindListing}))
}

func TestEvaluator_UnknownRoleDenied(t *testing.T) {
	e := NewEvaluator()
	ghost := user.Principal{ID: 50, Role: user.Role("guest")}
	for _, a := range []Action{ListingRead, ListingCreate, ListingClaim, ApplicationCreate, SettingsUpdate} {
		assert.Equal(t, Deny, e.Decide(ghost, a, Resource{Kind: KindListing, OwnerID: 1}), string(a))
	}
}

func TestAdminRulesNeverGrantParticipantActions(t *testing.T) {
	actions := []Action{ListingClaim, ApplicationCreate, ApplicationConfirmPickup, PaymentInitiate}
	resources := []Resource{
		{Kind: KindListing, ID: 1, OwnerID: 99},
		{Kind: KindApplication, ID: 2, OwnerID: 99, SeekerID: 98},
		{Kind: KindPayment, UserID: 97},
	}
	for _, p := range []user.Principal{admin, mainAdmin} {
		for _, a := range actions {
			for _, r := range resources {
				d, matched := MainAdminRule(p, a, r)
				assert.False(t, matched && d == Allow, "main admin rule granted %s", a)
				d, matched = AdminRule(p, a, r)
				assert.False(t, matched && d == Allow, "admin rule granted %s", a)
			}
		}
	}
}

func TestAuthorize(t *testing.T) {
	e := NewEvaluator()

	err := e.Authorize(receiver, ApplicationDecide, Resource{Kind: KindApplication, ID: 3, OwnerID: donor.ID, SeekerID: other.ID})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	assert.NoError(t, e.Authorize(admin, ApplicationDecide, Resource{Kind: KindApplication, ID: 3, OwnerID: donor.ID, SeekerID: other.ID}))
}
