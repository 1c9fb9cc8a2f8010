package api

import (
	"errors"
	"math"
	"time"

	"github.com/thefiredev-cloud/vortis/handler"
	"github.com/thefiredev-cloud/vortis/svc/analysis"
	"github.com/thefiredev-cloud/vortis/svc/auth"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

type analyzeRequest struct {
	Ticker string `json:"ticker" validate:"required"`
}

// analyze validates the ticker, charges the caller's plan quota when the
// caller is signed in and returns the analysis.
func (a *api) analyze(ctx handler.Context, req analyzeRequest) handler.Response {
	ticker, err := analysis.NormalizeTicker(req.Ticker)
	if err != nil {
		return handler.Error(err)
	}

	if userID := auth.UserID(ctx); userID != "" && a.quota != nil {
		usage, err := a.quota.ConsumeAnalysis(ctx, userID)
		if errors.Is(err, subscription.ErrQuotaExceeded) {
			retry := 1
			if usage != nil {
				retry = retryAfterSeconds(usage.ResetIn(a.now()))
			}
			return handler.Error(errQuotaExceeded.WithRetryAfter(retry))
		}
		if err != nil {
			return handler.Error(err)
		}
	}

	result, err := a.analyzer.Analyze(ctx, ticker)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Success(result)
}

func retryAfterSeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}
