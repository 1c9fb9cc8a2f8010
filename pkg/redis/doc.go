// Package redis connects to Redis with go-redis and exposes a readiness
// probe. The client backs the shared rate limit store when
// RATE_LIMIT_STORE=redis.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
