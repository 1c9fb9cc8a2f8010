// Package subscription keeps billing subscriptions, analysis usage and user
// profiles in sync with provider webhooks and enforces per-plan analysis
// quotas.
//
// The Synchronizer applies normalized events from package events. Status
// changes go through a transition table built with pkg/statemachine, so a
// canceled subscription stays canceled until a new checkout completes, and
// events older than the last applied one are skipped.
//
//	sync := subscription.NewSynchronizer(store, catalog, subscription.WithLogger(log))
//	res, err := sync.Apply(ctx, ev)
//	if err != nil {
//		return err // store failure, provider retries
//	}
//	if skip, ok := res.(subscription.Skip); ok {
//		log.Info("event skipped", "reason", skip.Reason)
//	}
//
// Service.ConsumeAnalysis counts one analysis against the caller's plan and
// returns ErrQuotaExceeded once the period allowance is used up.
package subscription
