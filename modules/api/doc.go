// Package api mounts the vortis HTTP endpoints on a chi router.
//
//	POST /api/analyze          rate limited, quota checked stock analysis
//	POST /api/stripe/checkout  checkout session for the signed-in user
//	POST /api/stripe/webhook   Stripe event ingestion
//	POST /api/webhooks/clerk   Clerk event ingestion
//
// Health probes and the Prometheus endpoint are mounted alongside.
package api
