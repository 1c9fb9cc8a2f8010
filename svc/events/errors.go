package events

import "errors"

var ErrMalformedEvent = errors.New("malformed webhook event")
