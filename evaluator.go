package corslab

import (
	"net/http"

	"github.com/corslab/corslab/internal/headers"
	"github.com/corslab/corslab/internal/methods"
	"github.com/corslab/corslab/internal/origins"
)

const (
	preflightOKStatus = http.StatusNoContent
	// maxReportedHeaders bounds the disallowed headers a DeniedError lists.
	maxReportedHeaders = 8
)

// An Evaluator enforces a [Policy].
// Evaluators are immutable and safe for concurrent use by multiple
// goroutines. Evaluators must be created with [NewEvaluator].
type Evaluator struct {
	policy  *internalPolicy
	onDeny  func(http.ResponseWriter, *http.Request, *DeniedError)
	observe func(*http.Request, Decision)
}

// An Option customizes an [Evaluator].
type Option func(*Evaluator)

// WithDenyHandler makes the evaluator call f, instead of [WriteDenied],
// to answer denied requests.
func WithDenyHandler(f func(http.ResponseWriter, *http.Request, *DeniedError)) Option {
	return func(e *Evaluator) {
		e.onDeny = f
	}
}

// WithObserver makes the evaluator call f with every decision taken by
// [*Evaluator.Wrap], before the response is written.
func WithObserver(f func(*http.Request, Decision)) Option {
	return func(e *Evaluator) {
		e.observe = f
	}
}

// NewEvaluator validates p and returns an Evaluator that enforces it.
// If p is invalid, NewEvaluator returns a nil *Evaluator and an error that
// joins one error per mistake; use [github.com/corslab/corslab/cfgerrors.All]
// to inspect them.
//
// Mutating p after NewEvaluator has returned does not affect the Evaluator.
func NewEvaluator(p Policy, opts ...Option) (*Evaluator, error) {
	ip, err := newInternalPolicy(&p)
	if err != nil {
		return nil, err
	}
	e := Evaluator{
		policy: ip,
		onDeny: WriteDenied,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return &e, nil
}

// Policy returns a deep copy of the normalized policy that e enforces:
// safelisted methods and response headers are dropped, names are
// canonicalized and sorted. Passing the result to [NewEvaluator] yields
// an Evaluator that behaves like e.
func (e *Evaluator) Policy() *Policy {
	return newPolicy(e.policy)
}

// Wrap returns a handler that evaluates each request against e's policy.
// Denied requests are answered by the deny handler and never reach h.
// Allowed preflight requests are answered with 204 No Content and never
// reach h either. All other requests reach h, with the CORS response
// headers already set.
func (e *Evaluator) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := e.Evaluate(r)
		if e.observe != nil {
			e.observe(r, d)
		}
		d.Apply(w.Header())
		switch {
		case !d.Allowed:
			e.onDeny(w, r, d.Err)
		case d.Kind == Preflight:
			w.WriteHeader(preflightOKStatus)
		default:
			h.ServeHTTP(w, r)
		}
	})
}

// Evaluate classifies r and decides whether e's policy allows it.
// It has no side effects.
func (e *Evaluator) Evaluate(r *http.Request) Decision {
	isOPTIONS := r.Method == http.MethodOptions
	// Browsers send at most one Origin header.
	origin, found := headers.First(r.Header, headers.Origin)
	if !found {
		return e.policy.evaluateNonCORS(isOPTIONS)
	}
	acrm, found := headers.First(r.Header, headers.ACRM)
	if isOPTIONS && found {
		return e.policy.evaluatePreflight(r.Header, origin, acrm)
	}
	return e.policy.evaluateActual(origin, isOPTIONS)
}

func (ip *internalPolicy) evaluateNonCORS(isOPTIONS bool) Decision {
	h := make(http.Header)
	if ip.anyOrigin {
		h.Set(headers.ACAO, headers.ValueWildcard)
		if ip.aceh != "" {
			h.Set(headers.ACEH, ip.aceh)
		}
	} else if !isOPTIONS {
		// The response would differ if the request had an Origin;
		// see https://fetch.spec.whatwg.org/#cors-protocol-and-http-caches.
		h.Set(headers.Vary, headers.Origin)
	}
	return allow(NonCORS, "", h)
}

func (ip *internalPolicy) evaluateActual(origin string, isOPTIONS bool) Decision {
	h := make(http.Header)
	if ip.anyOrigin {
		h.Set(headers.ACAO, headers.ValueWildcard)
		if ip.aceh != "" {
			h.Set(headers.ACEH, ip.aceh)
		}
		return allow(Actual, origin, h)
	}
	if !isOPTIONS {
		h.Set(headers.Vary, headers.Origin)
	}
	if !ip.allowsOrigin(origin) {
		return deny(Actual, h, &DeniedError{Origin: origin})
	}
	h.Set(headers.ACAO, origin)
	if ip.credentialed {
		// Whether the request actually carries credentials is not
		// observable here, so ACAC is always sent.
		h.Set(headers.ACAC, headers.ValueTrue)
	}
	if ip.aceh != "" {
		h.Set(headers.ACEH, ip.aceh)
	}
	return allow(Actual, origin, h)
}

// evaluatePreflight checks origin, then method, then request headers,
// like browsers do; see https://fetch.spec.whatwg.org/#cors-preflight-fetch.
// Vary is omitted: it has no bearing on the preflight cache.
func (ip *internalPolicy) evaluatePreflight(reqHdrs http.Header, origin, acrm string) Decision {
	h := make(http.Header)
	if ip.anyOrigin {
		h.Set(headers.ACAO, headers.ValueWildcard)
	} else {
		if !ip.allowsOrigin(origin) {
			return deny(Preflight, nil, &DeniedError{Origin: origin})
		}
		h.Set(headers.ACAO, origin)
		if ip.credentialed {
			h.Set(headers.ACAC, headers.ValueTrue)
		}
	}
	if !ip.processACRM(h, acrm) {
		return deny(Preflight, nil, &DeniedError{Origin: origin, Method: acrm})
	}
	if rejected := ip.processACRH(h, reqHdrs[headers.ACRH]); rejected != nil {
		return deny(Preflight, nil, &DeniedError{Origin: origin, Headers: rejected})
	}
	if ip.acma != "" {
		h.Set(headers.ACMA, ip.acma)
	}
	return allow(Preflight, origin, h)
}

func (ip *internalPolicy) allowsOrigin(origin string) bool {
	o, ok := origins.Parse(origin)
	return ok && ip.origins.Contains(o)
}

// processACRM reports whether the requested method is allowed and, if so,
// sets ACAM in h. Only the requested method is ever listed.
func (ip *internalPolicy) processACRM(h http.Header, acrm string) bool {
	if methods.IsSafelisted(acrm) {
		return true
	}
	switch {
	case ip.anyMethod && !ip.credentialed:
		h.Set(headers.ACAM, headers.ValueWildcard)
	case ip.anyMethod || ip.allowedMethods.Contains(acrm):
		h.Set(headers.ACAM, acrm)
	default:
		return false
	}
	return true
}

// processACRH checks the ACRH field lines, if any, and sets ACAH in h.
// If some requested headers are disallowed, it returns them.
func (ip *internalPolicy) processACRH(h http.Header, acrh []string) []string {
	if len(acrh) == 0 {
		return nil
	}
	switch {
	case ip.anyReqHdrs && !ip.credentialed:
		// Without credentials, browsers don't let "*" cover Authorization;
		// see https://fetch.spec.whatwg.org/#cors-non-wildcard-request-header-name.
		if ip.allowAuthorization {
			h.Set(headers.ACAH, headers.ValueWildcard+headers.ValueSep+headers.Authorization)
		} else {
			h.Set(headers.ACAH, headers.ValueWildcard)
		}
	case ip.anyReqHdrs || ip.allowedReqHdrs.Accepts(acrh):
		// Browsers accept multiple ACAH field lines.
		h[headers.ACAH] = acrh
	default:
		rejected := ip.allowedReqHdrs.Disallowed(acrh, maxReportedHeaders)
		if len(rejected) == 0 {
			// Every name is allowed, but the list is malformed
			// (out of order, duplicated, or padded beyond tolerance).
			rejected = []string{headers.ACRH}
		}
		return rejected
	}
	return nil
}
