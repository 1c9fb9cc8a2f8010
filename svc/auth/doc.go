// Package auth authenticates API callers with Clerk session tokens.
//
// Tokens are RS256 JWTs signed with keys published at the instance JWKS
// endpoint. The Verifier checks signature, issuer, expiry and, when
// configured, the authorized party. Middleware rejects unauthenticated
// requests with 401, OptionalMiddleware only attaches the user when a valid
// token is present.
//
//	v, err := auth.NewVerifier(ctx, cfg)
//	r.With(auth.Middleware(v, log)).Post("/api/stripe/checkout", h)
//	r.With(auth.OptionalMiddleware(v, log)).Post("/api/analyze", h)
package auth
