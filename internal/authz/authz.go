// Package authz decides whether a principal may perform an action on a
// resource. It is the only package that inspects user roles.
package authz

import (
	"foodshare/internal/apperr"
	"foodshare/internal/user"
)

type Action string

const (
	UserRead   Action = "user:read"
	UserUpdate Action = "user:update"
	UserVerify Action = "user:verify"
	UserDelete Action = "user:delete"

	ListingCreate  Action = "listing:create"
	ListingRead    Action = "listing:read"
	ListingUpdate  Action = "listing:update"
	ListingApprove Action = "listing:approve"
	ListingExpire  Action = "listing:expire"
	ListingClaim   Action = "listing:claim"
	ListingPickup  Action = "listing:pickup"

	ApplicationCreate        Action = "application:create"
	ApplicationRead          Action = "application:read"
	ApplicationDecide        Action = "application:decide"
	ApplicationConfirmPickup Action = "application:confirm_pickup"

	PaymentInitiate  Action = "payment:initiate"
	PaymentRead      Action = "payment:read"
	SubscriptionRead Action = "subscription:read"
	SettingsUpdate   Action = "settings:update"
)

// participant actions make the caller a party to the resource; administrative
// standing never substitutes for being that party.
var participant = map[Action]bool{
	ListingClaim:             true,
	ApplicationCreate:        true,
	ApplicationConfirmPickup: true,
	PaymentInitiate:          true,
}

func (a Action) Participant() bool { return participant[a] }

type Kind string

const (
	KindUser         Kind = "user"
	KindListing      Kind = "listing"
	KindApplication  Kind = "application"
	KindPayment      Kind = "payment"
	KindSubscription Kind = "subscription"
	KindSettings     Kind = "settings"
)

// Resource carries the ownership links rules look at. Zero IDs mean "no link".
type Resource struct {
	Kind Kind
	ID   int64

	// OwnerID is the listing owner, for listings and for applications on them.
	OwnerID    int64
	SeekerID   int64
	ClaimantID *int64
	// UserID is the subject of user, payment and subscription resources.
	UserID     int64
	TargetRole user.Role
}

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Rule returns matched=false to defer to the next rule.
type Rule func(p user.Principal, a Action, r Resource) (d Decision, matched bool)

type Evaluator struct {
	rules []Rule
}

// NewEvaluator returns the evaluator with the standard precedence:
// main admin, admin, ownership, role-gated creation, then deny.
func NewEvaluator() *Evaluator {
	return &Evaluator{rules: []Rule{
		MainAdminRule,
		AdminRule,
		OwnershipRule,
		RoleGatedRule,
	}}
}

// NewEvaluatorWithRules is used by tests to exercise custom rule sets.
func NewEvaluatorWithRules(rules ...Rule) *Evaluator {
	return &Evaluator{rules: rules}
}

func (e *Evaluator) Decide(p user.Principal, a Action, r Resource) Decision {
	for _, rule := range e.rules {
		if d, ok := rule(p, a, r); ok {
			return d
		}
	}
	return Deny
}

// Authorize turns a deny into an apperr.Unauthorized.
func (e *Evaluator) Authorize(p user.Principal, a Action, r Resource) error {
	if e.Decide(p, a, r) == Allow {
		return nil
	}
	if r.ID != 0 {
		return apperr.Unauthorized(string(a), "principal %d may not %s %s %d", p.ID, a, r.Kind, r.ID)
	}
	return apperr.Unauthorized(string(a), "principal %d may not %s", p.ID, a)
}
