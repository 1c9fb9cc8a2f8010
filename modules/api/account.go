package api

import (
	"errors"
	"time"

	"github.com/thefiredev-cloud/vortis/handler"
	"github.com/thefiredev-cloud/vortis/svc/auth"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

type planView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	AnalysesLimit int64  `json:"analysesLimit"`
}

type usageView struct {
	Used      int64     `json:"used"`
	Limit     int64     `json:"limit"`
	Remaining int64     `json:"remaining"`
	PeriodEnd time.Time `json:"periodEnd"`
}

type subscriptionView struct {
	Plan              planView   `json:"plan"`
	Status            string     `json:"status"`
	Active            bool       `json:"active"`
	Canceled          bool       `json:"canceled"`
	CancelAtPeriodEnd bool       `json:"cancelAtPeriodEnd"`
	CurrentPeriodEnd  *time.Time `json:"currentPeriodEnd,omitempty"`
	Usage             *usageView `json:"usage,omitempty"`
}

func newPlanView(p subscription.Plan) planView {
	return planView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		AnalysesLimit: p.Limit(subscription.ResourceAnalyses),
	}
}

// listPlans answers with the plan catalog.
func (a *api) listPlans(_ handler.Context, _ struct{}) handler.Response {
	plans := a.account.Plans()
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanView(p))
	}
	return handler.Success(out)
}

// currentSubscription answers with the caller's latest subscription and
// its usage in the current period.
func (a *api) currentSubscription(ctx handler.Context, _ struct{}) handler.Response {
	userID := auth.UserID(ctx)
	if userID == "" {
		return handler.Error(handler.ErrUnauthorized)
	}

	sub, err := a.account.Subscription(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}

	view := subscriptionView{
		Plan:              planView{ID: sub.PlanName},
		Status:            string(sub.Status),
		Active:            sub.IsActive(),
		Canceled:          sub.IsCanceled(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
	}
	if plan, err := a.account.Plan(sub.PlanName); err == nil {
		view.Plan = newPlanView(plan)
	}

	usage, err := a.account.Usage(ctx, userID)
	switch {
	case err == nil:
		view.Usage = &usageView{
			Used:      usage.AnalysesUsed,
			Limit:     usage.AnalysesLimit,
			Remaining: usage.Remaining(),
			PeriodEnd: usage.PeriodEnd,
		}
	case !errors.Is(err, subscription.ErrUsageNotFound):
		return handler.Error(err)
	}
	return handler.Success(view)
}
