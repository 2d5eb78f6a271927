package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"foodshare/internal/apperr"
	"foodshare/internal/authz"
	"foodshare/internal/metrics"
	"foodshare/internal/payment"
	"foodshare/internal/subscription"
	"foodshare/internal/user"
	"foodshare/pkg/logger"
)

type Authorizer interface {
	Authorize(p user.Principal, a authz.Action, r authz.Resource) error
}

type PlanCatalog interface {
	Plan(ctx context.Context, id int64) (*subscription.Plan, error)
	Plans(ctx context.Context) ([]subscription.Plan, error)
	GetSubscription(ctx context.Context, userID int64) (*subscription.Subscription, error)
}

// ReplayCache answers replayed callbacks. It is advisory: the database row
// stays authoritative and cache failures never fail a callback.
type ReplayCache interface {
	Get(ctx context.Context, ref string) (*payment.CallbackResult, bool, error)
	Set(ctx context.Context, res payment.CallbackResult) error
}

type Service struct {
	repo        payment.Repository
	plans       PlanCatalog
	authz       Authorizer
	cache       ReplayCache
	log         logger.Logger
	callbackURL string
	now         func() time.Time
	newRef      func() string
}

func NewService(repo payment.Repository, plans PlanCatalog, az Authorizer, log logger.Logger, callbackBaseURL string) *Service {
	return &Service{
		repo:        repo,
		plans:       plans,
		authz:       az,
		log:         log,
		callbackURL: strings.TrimRight(callbackBaseURL, "/"),
		now:         time.Now,
		newRef:      func() string { return uuid.NewString() },
	}
}

func (s *Service) WithCache(c ReplayCache) *Service {
	s.cache = c
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Initiate opens a pending transaction for plan and returns where to pay.
func (s *Service) Initiate(ctx context.Context, actor user.Principal, planID int64) (*payment.Initiation, error) {
	if err := s.authz.Authorize(actor, authz.PaymentInitiate, authz.Resource{Kind: authz.KindPayment, UserID: actor.ID}); err != nil {
		return nil, err
	}

	plan, err := s.plans.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &payment.Transaction{
		UserID:      actor.ID,
		PlanID:      plan.ID,
		Amount:      plan.Price,
		Status:      payment.StatusPending,
		ProviderRef: s.newRef(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info("payment initiated", map[string]interface{}{
		"transaction_id": t.ID,
		"user_id":        actor.ID,
		"plan_id":        plan.ID,
		"amount":         t.Amount.StringFixed(2),
	})
	return &payment.Initiation{
		TransactionID: t.ID,
		ProviderRef:   t.ProviderRef,
		PaymentURL:    s.callbackURL + "/" + t.ProviderRef,
		Status:        t.Status,
	}, nil
}

// HandleCallback applies the gateway outcome for ref exactly once. Replays of
// an already terminal transaction return its stored status untouched.
func (s *Service) HandleCallback(ctx context.Context, ref, outcome string) (*payment.CallbackResult, error) {
	status, ok := payment.ParseOutcome(outcome)
	if !ok {
		return nil, apperr.Validation("payment.callback", "outcome %q is not success or failed", outcome)
	}
	if strings.TrimSpace(ref) == "" {
		return nil, apperr.Validation("payment.callback", "provider_ref is required")
	}

	if res := s.cached(ctx, ref); res != nil {
		metrics.PaymentCallbacksTotal.WithLabelValues(string(res.Status), "true").Inc()
		return res, nil
	}

	var res payment.CallbackResult
	err := s.repo.InTx(ctx, func(tx payment.TxRepository) error {
		t, err := tx.GetByRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		res = payment.CallbackResult{TransactionID: t.ID, ProviderRef: t.ProviderRef, Status: t.Status}
		if t.Status.Terminal() {
			res.Replayed = true
			return nil
		}

		now := s.now().UTC()
		if err := tx.UpdateStatus(ctx, t.ID, status, now); err != nil {
			return err
		}
		res.Status = status
		if status != payment.StatusSuccess {
			return nil
		}

		plan, err := tx.GetPlan(ctx, t.PlanID)
		if err != nil {
			return err
		}
		return tx.UpsertSubscription(ctx, &subscription.Subscription{
			UserID:    t.UserID,
			PlanID:    plan.ID,
			EndDate:   now.AddDate(0, 0, plan.DurationDays),
			IsActive:  true,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if !res.Replayed {
		metrics.Transition("payment", string(payment.StatusPending), string(res.Status))
	}
	metrics.PaymentCallbacksTotal.WithLabelValues(string(res.Status), strconv.FormatBool(res.Replayed)).Inc()
	s.log.Info("payment callback handled", map[string]interface{}{
		"transaction_id": res.TransactionID,
		"status":         string(res.Status),
		"replayed":       res.Replayed,
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, res); err != nil {
			s.log.Warn("failed to cache callback outcome", map[string]interface{}{"provider_ref": ref, "error": err})
		}
	}
	return &res, nil
}

func (s *Service) cached(ctx context.Context, ref string) *payment.CallbackResult {
	if s.cache == nil {
		return nil
	}
	res, found, err := s.cache.Get(ctx, ref)
	if err != nil {
		s.log.Warn("callback cache unavailable", map[string]interface{}{"provider_ref": ref, "error": err})
		return nil
	}
	if !found || !res.Status.Terminal() {
		return nil
	}
	res.Replayed = true
	return res
}

// History lists the actor's transactions, newest first.
func (s *Service) History(ctx context.Context, actor user.Principal) ([]payment.Transaction, error) {
	if err := s.authz.Authorize(actor, authz.PaymentRead, authz.Resource{Kind: authz.KindPayment, UserID: actor.ID}); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, actor.ID)
}

func (s *Service) Subscription(ctx context.Context, actor user.Principal) (*subscription.Subscription, error) {
	if err := s.authz.Authorize(actor, authz.SubscriptionRead, authz.Resource{Kind: authz.KindSubscription, UserID: actor.ID}); err != nil {
		return nil, err
	}
	sub, err := s.plans.GetSubscription(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("subscription.get", "user %d has no subscription", actor.ID)
	}
	return sub, nil
}

func (s *Service) Plans(ctx context.Context) ([]subscription.Plan, error) {
	return s.plans.Plans(ctx)
}
