package api

import (
	"github.com/thefiredev-cloud/vortis/handler"
	"github.com/thefiredev-cloud/vortis/svc/auth"
	"github.com/thefiredev-cloud/vortis/svc/checkout"
)

type checkoutRequest struct {
	PlanName string `json:"planName" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// createCheckout opens a subscription checkout for the signed-in user and
// answers with the bare session, not the success envelope.
func (a *api) createCheckout(ctx handler.Context, req checkoutRequest) handler.Response {
	userID := auth.UserID(ctx)
	if userID == "" {
		return handler.Error(handler.ErrUnauthorized)
	}
	if a.checkout == nil {
		return handler.Error(errCheckoutNotConfigured)
	}

	session, err := a.checkout.CreateSession(ctx, checkout.Request{
		UserID:   userID,
		Email:    req.Email,
		PlanName: req.PlanName,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(session)
}
