package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTolerance is how far a delivery timestamp may drift from the
	// local clock in either direction.
	DefaultTolerance = 5 * time.Minute

	secretPrefix     = "whsec_"
	signatureVersion = "v1"
)

type verifyOptions struct {
	tolerance time.Duration
	now       func() time.Time
}

// Option configures Verify.
type Option func(*verifyOptions)

// WithTolerance overrides DefaultTolerance. Non-positive values are ignored.
func WithTolerance(d time.Duration) Option {
	return func(o *verifyOptions) {
		if d > 0 {
			o.tolerance = d
		}
	}
}

// WithNow replaces the clock used for the tolerance check.
func WithNow(now func() time.Time) Option {
	return func(o *verifyOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Verify checks that one of the v1 signatures in h was produced over body
// with secret. Every failure wraps ErrSignatureInvalid except a missing
// header, which returns ErrMissingHeaders.
func Verify(secret string, body []byte, h Headers, opts ...Option) error {
	if !h.Complete() {
		return ErrMissingHeaders
	}

	o := verifyOptions{tolerance: DefaultTolerance, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return errors.Join(ErrSignatureInvalid, err)
	}

	ts, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp %q", ErrSignatureInvalid, h.Timestamp)
	}
	drift := o.now().Sub(time.Unix(ts, 0))
	if drift > o.tolerance || drift < -o.tolerance {
		return errors.Join(ErrSignatureInvalid, ErrTimestampOutOfRange)
	}

	expected := compute(key, h.ID, h.Timestamp, body)
	for _, entry := range strings.Fields(h.Signature) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != signatureVersion {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return ErrSignatureInvalid
}

// Sign returns a "v1,<base64>" signature entry for body. It is the inverse of
// Verify and is meant for tests and local tooling.
func Sign(secret, id string, timestamp int64, body []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	sig := compute(key, id, strconv.FormatInt(timestamp, 10), body)
	return signatureVersion + "," + base64.StdEncoding.EncodeToString(sig), nil
}

func compute(key []byte, id, timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte{'.'})
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return mac.Sum(nil)
}

// decodeSecret base64 decodes whsec_ secrets and uses anything else as raw
// key bytes.
func decodeSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	encoded, ok := strings.CutPrefix(secret, secretPrefix)
	if !ok {
		return []byte(secret), nil
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: secret is not valid base64", ErrSecretRequired)
	}
	return key, nil
}
