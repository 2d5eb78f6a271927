// Package orchestrator is the boundary the request layer calls into. It
// resolves the caller, runs one lifecycle operation under a span, and
// sequences the few operations that touch more than one entity.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"foodshare/internal/apperr"
	"foodshare/internal/authz"
	applicationservice "foodshare/internal/application/service"
	listingservice "foodshare/internal/listing/service"
	"foodshare/internal/metrics"
	paymentservice "foodshare/internal/payment/service"
	"foodshare/internal/settings"
	"foodshare/internal/user"
	"foodshare/pkg/logger"
)

// Policy decides what approving an application does to its listing.
type Policy string

const (
	// PolicyOpen leaves the listing alone; approvals are independent.
	PolicyOpen Policy = "open"
	// PolicyExclusive reserves the listing for the approved application and
	// rejects the competing ones.
	PolicyExclusive Policy = "exclusive"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyOpen, PolicyExclusive:
		return p, nil
	case "":
		return PolicyOpen, nil
	}
	return "", fmt.Errorf("unknown application policy %q", s)
}

type Principals interface {
	Resolve(ctx context.Context, userID int64) (user.Principal, error)
	Get(ctx context.Context, userID int64) (*user.User, error)
	SetVerified(ctx context.Context, userID int64, verified bool) (*user.User, error)
}

type Authorizer interface {
	Authorize(p user.Principal, a authz.Action, r authz.Resource) error
}

type Orchestrator struct {
	users        Principals
	listings     *listingservice.Service
	applications *applicationservice.Service
	payments     *paymentservice.Service
	settings     *settings.Store
	authz        Authorizer
	policy       Policy
	tracer       trace.Tracer
	log          logger.Logger
}

type Deps struct {
	Users        Principals
	Listings     *listingservice.Service
	Applications *applicationservice.Service
	Payments     *paymentservice.Service
	Settings     *settings.Store
	Authz        Authorizer
}

func New(d Deps, policy Policy, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		users:        d.Users,
		listings:     d.Listings,
		applications: d.Applications,
		payments:     d.Payments,
		settings:     d.Settings,
		authz:        d.Authz,
		policy:       policy,
		tracer:       otel.Tracer("foodshare/orchestrator"),
		log:          log,
	}
}

func (o *Orchestrator) Policy() Policy { return o.policy }

// invoke resolves the caller and runs fn under a span, recording the outcome.
func invoke[T any](ctx context.Context, o *Orchestrator, op string, userID int64, fn func(context.Context, user.Principal) (T, error)) (T, error) {
	var zero T
	ctx, span := o.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()
	start := time.Now()

	out, err := func() (T, error) {
		p, err := o.resolve(ctx, userID)
		if err != nil {
			return zero, err
		}
		span.SetAttributes(attribute.String("user.role", string(p.Role)))
		return fn(ctx, p)
	}()

	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		o.reject(span, op, userID, err)
		return zero, err
	}
	return out, nil
}

// invokeAnonymous is invoke for operations without a caller, such as
// gateway callbacks.
func invokeAnonymous[T any](ctx context.Context, o *Orchestrator, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, span := o.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	out, err := fn(ctx)
	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		o.reject(span, op, 0, err)
		return zero, err
	}
	return out, nil
}

func (o *Orchestrator) resolve(ctx context.Context, userID int64) (user.Principal, error) {
	p, err := o.users.Resolve(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return user.Principal{}, apperr.Unauthorized("resolve", "user %d no longer exists", userID)
	}
	return p, err
}

func (o *Orchestrator) reject(span trace.Span, op string, userID int64, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	kind := apperr.KindOf(err)
	fields := map[string]interface{}{"operation": op, "user_id": userID, "error": err}
	if kind == "" {
		metrics.Rejection(op, "internal")
		o.log.Error("operation failed", fields)
		return
	}
	metrics.Rejection(op, string(kind))
	o.log.Debug("operation rejected", fields)
}
