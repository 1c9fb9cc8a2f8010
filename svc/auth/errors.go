package auth

import "errors"

var (
	ErrMissingIssuer   = errors.New("auth: clerk issuer is required, set CLERK_ISSUER")
	ErrMissingToken    = errors.New("auth: missing session token")
	ErrInvalidToken    = errors.New("auth: invalid session token")
	ErrUnauthorizedAzp = errors.New("auth: token issued for an unauthorized party")
)
