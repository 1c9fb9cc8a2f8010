package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the Clerk session token claims the service reads.
type Claims struct {
	jwt.RegisteredClaims
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp"`
}

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Verifier validates Clerk session tokens against the instance JWKS.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	parties []string
	cookie  string
}

// NewVerifier fetches the JWKS and keeps it refreshed until ctx is done.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingIssuer
	}
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.jwksURL()})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}
	return newVerifier(kf.Keyfunc, cfg), nil
}

// NewVerifierWithKeyfunc builds a Verifier around an existing key lookup.
func NewVerifierWithKeyfunc(kf jwt.Keyfunc, cfg Config) (*Verifier, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingIssuer
	}
	return newVerifier(kf, cfg), nil
}

func newVerifier(kf jwt.Keyfunc, cfg Config) *Verifier {
	cookie := cfg.SessionCookieName
	if cookie == "" {
		cookie = "__session"
	}
	return &Verifier{
		keyfunc: kf,
		parser: jwt.NewParser(
			jwt.WithIssuer(cfg.issuer()),
			jwt.WithLeeway(cfg.Leeway),
			jwt.WithExpirationRequired(),
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		),
		parties: cfg.AuthorizedParties,
		cookie:  cookie,
	}
}

// Verify parses and validates token.
func (v *Verifier) Verify(_ context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, v.keyfunc); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token missing sub", ErrInvalidToken)
	}
	if len(v.parties) > 0 && claims.AuthorizedParty != "" && !slices.Contains(v.parties, claims.AuthorizedParty) {
		return nil, ErrUnauthorizedAzp
	}
	return claims, nil
}

// CookieName is the cookie that carries same-site session tokens.
func (v *Verifier) CookieName() string {
	return v.cookie
}
