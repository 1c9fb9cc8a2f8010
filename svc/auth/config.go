package auth

import (
	"strings"
	"time"
)

// Config configures the Clerk session verifier.
type Config struct {
	Issuer            string        `env:"CLERK_ISSUER"`
	JWKSURL           string        `env:"CLERK_JWKS_URL"` // defaults to <issuer>/.well-known/jwks.json
	AuthorizedParties []string      `env:"CLERK_AUTHORIZED_PARTIES" envSeparator:","`
	Leeway            time.Duration `env:"CLERK_LEEWAY" envDefault:"30s"`
	SessionCookieName string        `env:"CLERK_SESSION_COOKIE" envDefault:"__session"`
}

// Enabled reports whether an issuer is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Issuer) != ""
}

func (c Config) issuer() string {
	return strings.TrimSuffix(strings.TrimSpace(c.Issuer), "/")
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return c.issuer() + "/.well-known/jwks.json"
}
