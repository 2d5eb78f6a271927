package service

import (
	"context"
	"errors"
	"strings"

	"foodshare/internal/apperr"
	"foodshare/internal/user"
	"foodshare/pkg/hash"
	"foodshare/pkg/logger"
)

var ErrInvalidCreds = errors.New("invalid credentials")

// SubscriptionChecker reports whether a user currently holds an active subscription.
type SubscriptionChecker interface {
	IsUserSubscribed(ctx context.Context, userID int64) (bool, error)
}

type UserService struct {
	repo user.Repository
	subs SubscriptionChecker
	log  logger.Logger
}

func NewUserService(repo user.Repository, subs SubscriptionChecker, log logger.Logger) *UserService {
	return &UserService{repo: repo, subs: subs, log: log}
}

// Register creates a donor or receiver account. Administrative roles are
// never self-assigned.
func (s *UserService) Register(ctx context.Context, email, name, password, role string) (*user.User, error) {
	r, err := user.ParseRole(role)
	if err != nil {
		return nil, apperr.Validation("user.register", "%v", err)
	}
	if r != user.RoleDonor && r != user.RoleReceiver {
		return nil, apperr.Validation("user.register", "role %s cannot be self-assigned", r)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("user.register", "email %s is already registered", email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:    email,
		Name:     name,
		Password: hashed,
		Role:     r,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered", map[string]interface{}{"user_id": u.ID, "role": string(u.Role)})
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCreds
	}
	if !hash.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCreds
	}
	return u, nil
}

// Resolve loads the caller's principal: role and verification from the user
// row, subscription activity from the subscription store.
func (s *UserService) Resolve(ctx context.Context, userID int64) (user.Principal, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return user.Principal{}, err
	}
	active, err := s.subs.IsUserSubscribed(ctx, userID)
	if err != nil {
		return user.Principal{}, err
	}
	return u.Principal(active), nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*user.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) SetVerified(ctx context.Context, userID int64, verified bool) (*user.User, error) {
	u, err := s.repo.SetVerified(ctx, userID, verified)
	if err != nil {
		return nil, err
	}
	s.log.Info("user verification changed", map[string]interface{}{"user_id": userID, "verified": verified})
	return u, nil
}
