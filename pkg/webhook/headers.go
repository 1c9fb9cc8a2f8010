package webhook

import "net/http"

// Header names of the Svix scheme. The webhook-* variants are the
// unbranded aliases of the same scheme.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	HeaderAltID        = "webhook-id"
	HeaderAltTimestamp = "webhook-timestamp"
	HeaderAltSignature = "webhook-signature"
)

// Headers holds the signature headers of one delivery.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// Complete reports whether all three values are present.
func (h Headers) Complete() bool {
	return h.ID != "" && h.Timestamp != "" && h.Signature != ""
}

// Set writes h onto an outgoing header set.
func (h Headers) Set(dst http.Header) {
	dst.Set(HeaderID, h.ID)
	dst.Set(HeaderTimestamp, h.Timestamp)
	dst.Set(HeaderSignature, h.Signature)
}

// HeadersFromRequest reads the signature headers, falling back to the
// webhook-* aliases. It returns ErrMissingHeaders if any value is absent.
func HeadersFromRequest(src http.Header) (Headers, error) {
	h := Headers{
		ID:        first(src, HeaderID, HeaderAltID),
		Timestamp: first(src, HeaderTimestamp, HeaderAltTimestamp),
		Signature: first(src, HeaderSignature, HeaderAltSignature),
	}
	if !h.Complete() {
		return h, ErrMissingHeaders
	}
	return h, nil
}

func first(src http.Header, names ...string) string {
	for _, name := range names {
		if v := src.Get(name); v != "" {
			return v
		}
	}
	return ""
}
