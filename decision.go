package corslab

import (
	"net/http"
	"slices"

	"github.com/corslab/corslab/internal/headers"
)

// Kind classifies a request from the point of view of the CORS protocol.
type Kind uint8

const (
	// NonCORS requests carry no Origin header.
	NonCORS Kind = iota
	// Actual requests carry an Origin header and are not preflights.
	Actual
	// Preflight requests are OPTIONS requests that carry both an Origin
	// and an Access-Control-Request-Method header.
	Preflight
)

func (k Kind) String() string {
	switch k {
	case NonCORS:
		return "non-cors"
	case Actual:
		return "actual"
	case Preflight:
		return "preflight"
	default:
		return "unknown"
	}
}

// A Decision is the outcome of evaluating a request against a [Policy].
type Decision struct {
	Kind Kind
	// Origin is the value of the request's Origin header, if any.
	Origin string
	// Allowed is false iff Err is non-nil.
	Allowed bool
	// Header holds the CORS response headers to attach to the response,
	// whether the request is allowed or not.
	Header http.Header
	Err    *DeniedError
}

// Apply attaches d's response headers to h. Vary is added to rather than
// set, so as not to clobber what outer handlers put there.
func (d *Decision) Apply(h http.Header) {
	for k, vs := range d.Header {
		if k == headers.Vary {
			for _, v := range vs {
				h.Add(k, v)
			}
			continue
		}
		// The handler may modify h; never let it alias d.Header.
		h[k] = slices.Clone(vs)
	}
}

// Outcome returns "allowed" or "denied".
func (d *Decision) Outcome() string {
	if d.Allowed {
		return "allowed"
	}
	return "denied"
}

func allow(kind Kind, origin string, h http.Header) Decision {
	return Decision{
		Kind:    kind,
		Origin:  origin,
		Allowed: true,
		Header:  h,
	}
}

func deny(kind Kind, h http.Header, err *DeniedError) Decision {
	return Decision{
		Kind:   kind,
		Origin: err.Origin,
		Header: h,
		Err:    err,
	}
}
