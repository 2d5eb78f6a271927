package authz

import "foodshare/internal/user"

func MainAdminRule(p user.Principal, a Action, r Resource) (Decision, bool) {
	if p.Role != user.RoleMainAdmin || a.Participant() {
		return Deny, false
	}
	if a == UserDelete && r.UserID == p.ID {
		return Deny, true
	}
	return Allow, true
}

var adminActions = map[Action]bool{
	UserRead:          true,
	UserUpdate:        true,
	UserVerify:        true,
	UserDelete:        true,
	ListingRead:       true,
	ListingUpdate:     true,
	ListingApprove:    true,
	ListingExpire:     true,
	ApplicationRead:   true,
	ApplicationDecide: true,
	PaymentRead:       true,
	SubscriptionRead:  true,
}

func AdminRule(p user.Principal, a Action, r Resource) (Decision, bool) {
	if p.Role != user.RoleAdmin {
		return Deny, false
	}
	if a == UserDelete && (r.TargetRole == user.RoleAdmin || r.TargetRole == user.RoleMainAdmin) {
		return Deny, true
	}
	if a == SettingsUpdate {
		return Deny, true
	}
	if adminActions[a] {
		return Allow, true
	}
	return Deny, false
}

func OwnershipRule(p user.Principal, a Action, r Resource) (Decision, bool) {
	switch r.Kind {
	case KindListing:
		if r.OwnerID == p.ID {
			switch a {
			case ListingRead, ListingUpdate, ListingExpire, ListingPickup:
				return Allow, true
			}
		}
		if r.ClaimantID != nil && *r.ClaimantID == p.ID {
			switch a {
			case ListingRead, ListingPickup:
				return Allow, true
			}
		}
	case KindApplication:
		if r.SeekerID == p.ID {
			switch a {
			case ApplicationRead, ApplicationConfirmPickup:
				return Allow, true
			}
		}
		if r.OwnerID == p.ID {
			switch a {
			case ApplicationRead, ApplicationDecide:
				return Allow, true
			}
		}
	case KindPayment:
		if r.UserID == p.ID && (a == PaymentRead || a == PaymentInitiate) {
			return Allow, true
		}
	case KindSubscription:
		if r.UserID == p.ID && a == SubscriptionRead {
			return Allow, true
		}
	case KindUser:
		if r.UserID == p.ID && (a == UserRead || a == UserUpdate) {
			return Allow, true
		}
	}
	return Deny, false
}

func RoleGatedRule(p user.Principal, a Action, _ Resource) (Decision, bool) {
	switch a {
	case ListingCreate:
		return allowIf(p.Role == user.RoleDonor), true
	case ApplicationCreate, ListingClaim:
		return allowIf(p.Role == user.RoleReceiver), true
	case ListingRead:
		// listings are browsable by every authenticated role
		return allowIf(p.Role.Valid()), true
	}
	return Deny, false
}

func allowIf(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}
