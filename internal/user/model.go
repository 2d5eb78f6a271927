package user

import (
	"fmt"
	"strings"
	"time"
)

// Role is a closed set. Only internal/authz branches on its value.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleReceiver  Role = "receiver"
	RoleAdmin     Role = "admin"
	RoleMainAdmin Role = "main_admin"
)

var roleAliases = map[string]Role{
	"donor":      RoleDonor,
	"provider":   RoleDonor,
	"receiver":   RoleReceiver,
	"seeker":     RoleReceiver,
	"admin":      RoleAdmin,
	"main_admin": RoleMainAdmin,
	"main admin": RoleMainAdmin,
	"mainadmin":  RoleMainAdmin,
}

// ParseRole accepts both vocabularies (Donor/Provider, Receiver/Seeker).
func ParseRole(s string) (Role, error) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleReceiver, RoleAdmin, RoleMainAdmin:
		return true
	}
	return false
}

type User struct {
	ID         int64     `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	Password   string    `json:"-" db:"password"` // будем хранить только хэш
	Role       Role      `json:"role" db:"role"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Principal is the authenticated caller as seen by the authorization layer.
type Principal struct {
	ID                 int64 `json:"id"`
	Role               Role  `json:"role"`
	Verified           bool  `json:"verified"`
	SubscriptionActive bool  `json:"subscription_active"`
}

func (u *User) Principal(subscriptionActive bool) Principal {
	return Principal{
		ID:                 u.ID,
		Role:               u.Role,
		Verified:           u.IsVerified,
		SubscriptionActive: subscriptionActive,
	}
}
