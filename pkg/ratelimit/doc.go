// Package ratelimit implements the fixed-window admission check placed in
// front of costly endpoints.
//
// A Limiter holds one Rule per Preset. Each Check increments the counter of
// "<preset>:<identifier>" in a Store. The first hit of a window starts it, and
// hits past the rule's limit are rejected until the window ends. Windows are
// half-open: a hit exactly at the window end starts a new window.
//
// MemoryStore keeps counters in the serving process. They are not shared
// between instances and are lost on restart, which is acceptable for coarse
// abuse prevention. RedisStore implements the same Store contract on a shared
// Redis for deployments that need fleet-wide counters.
//
//	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.DefaultRules())
//	mw := ratelimit.Middleware(limiter, ratelimit.PresetAnalyze, ratelimit.UserOrIP(auth.UserIDFromRequest))
package ratelimit
