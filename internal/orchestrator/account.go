package orchestrator

import (
	"context"

	"github.com/shopspring/decimal"

	"foodshare/internal/authz"
	"foodshare/internal/settings"
	"foodshare/internal/user"
)

type Me struct {
	User      *user.User     `json:"user"`
	Principal user.Principal `json:"principal"`
}

func (o *Orchestrator) Me(ctx context.Context, userID int64) (*Me, error) {
	return invoke(ctx, o, "user.me", userID, func(ctx context.Context, p user.Principal) (*Me, error) {
		u, err := o.users.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return &Me{User: u, Principal: p}, nil
	})
}

func (o *Orchestrator) VerifyUser(ctx context.Context, userID, targetID int64, verified bool) (*user.User, error) {
	return invoke(ctx, o, "user.verify", userID, func(ctx context.Context, p user.Principal) (*user.User, error) {
		target, err := o.users.Get(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if err := o.authz.Authorize(p, authz.UserVerify, authz.Resource{
			Kind:       authz.KindUser,
			ID:         target.ID,
			UserID:     target.ID,
			TargetRole: target.Role,
		}); err != nil {
			return nil, err
		}
		return o.users.SetVerified(ctx, target.ID, verified)
	})
}

// Settings is readable by every authenticated caller.
func (o *Orchestrator) Settings(ctx context.Context, userID int64) (settings.Settings, error) {
	return invoke(ctx, o, "settings.get", userID, func(context.Context, user.Principal) (settings.Settings, error) {
		return o.settings.Get(), nil
	})
}

func (o *Orchestrator) UpdateSettings(ctx context.Context, userID int64, proPlanPrice decimal.Decimal) (settings.Settings, error) {
	return invoke(ctx, o, "settings.update", userID, func(ctx context.Context, p user.Principal) (settings.Settings, error) {
		if err := o.authz.Authorize(p, authz.SettingsUpdate, authz.Resource{Kind: authz.KindSettings}); err != nil {
			return settings.Settings{}, err
		}
		s, err := o.settings.SetProPlanPrice(proPlanPrice)
		if err != nil {
			return settings.Settings{}, err
		}
		o.log.Info("settings updated", map[string]interface{}{
			"user_id":        p.ID,
			"pro_plan_price": s.ProPlanPrice.StringFixed(2),
		})
		return s, nil
	})
}
