// Package events normalizes identity and billing provider webhooks into a
// closed set of internal events.
//
// Every provider payload maps to exactly one Event variant. Types the
// service does not act on become Unhandled so callers can acknowledge them
// without touching state. A known type whose payload cannot be decoded is
// reported as ErrMalformedEvent.
//
//	ev, err := events.FromStripe(stripeEvent)
//	if err != nil {
//		return err // ErrMalformedEvent
//	}
//	switch e := ev.(type) {
//	case events.CheckoutCompleted:
//		// ...
//	case events.Unhandled:
//		log.Info("ignored", "type", e.Type)
//	}
package events
