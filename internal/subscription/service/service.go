package service

import (
	"context"
	"time"

	"foodshare/internal/subscription"
)

type Service struct {
	repo subscription.Repository
	now  func() time.Time
}

func NewService(repo subscription.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) IsUserSubscribed(ctx context.Context, userID int64) (bool, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub.Active(s.now()), nil
}

func (s *Service) GetSubscription(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) Plan(ctx context.Context, id int64) (*subscription.Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

func (s *Service) Plans(ctx context.Context) ([]subscription.Plan, error) {
	return s.repo.ListPlans(ctx)
}
