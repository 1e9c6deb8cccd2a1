/*
Package cfgerrors describes the mistakes that [github.com/corslab/corslab.NewEvaluator]
detects in a cross-origin policy.

The corslab server reports every mistake in its configuration at startup,
rather than just the first one; callers that want to react to specific
mistakes (for instance, to print a hint next to the offending YAML key)
can walk the error returned by NewEvaluator with [All] and switch on the
concrete types declared here.
*/
package cfgerrors

import (
	"fmt"
	"iter"
)

// An UnacceptableOriginPatternError indicates an unacceptable origin pattern.
// The Reason field is one of
//   - "missing": no origin pattern was specified;
//   - "invalid": the origin pattern cannot be parsed;
//   - "prohibited": the origin pattern parses but is never useful
//     (e.g. "null", or an explicit default port).
type UnacceptableOriginPatternError struct {
	Value  string // offending pattern
	Reason string // missing | invalid | prohibited
}

func (err *UnacceptableOriginPatternError) Error() string {
	if err.Reason == "missing" {
		return "corslab: a policy must allow at least one origin"
	}
	return fmt.Sprintf("corslab: %s origin pattern %q", err.Reason, err.Value)
}

// An UnacceptableMethodError indicates an unacceptable method.
// The Reason field is either "invalid" (not a token) or "forbidden"
// (browsers never let scripts use it, e.g. CONNECT).
type UnacceptableMethodError struct {
	Value  string
	Reason string // invalid | forbidden
}

func (err *UnacceptableMethodError) Error() string {
	return fmt.Sprintf("corslab: %s method %q", err.Reason, err.Value)
}

// An UnacceptableHeaderNameError indicates an unacceptable header name
// in the allowed request headers (Type "request") or the exposed response
// headers (Type "response").
// The Reason field is one of
//   - "invalid": the name is not a valid header name;
//   - "prohibited": the name is a CORS header of the opposite direction;
//   - "forbidden": browsers never let scripts set or read it.
type UnacceptableHeaderNameError struct {
	Value  string
	Type   string // request | response
	Reason string // invalid | prohibited | forbidden
}

func (err *UnacceptableHeaderNameError) Error() string {
	return fmt.Sprintf("corslab: %s %s-header name %q", err.Reason, err.Type, err.Value)
}

// A MaxAgeOutOfBoundsError indicates a preflight max-age that is
// neither -1 (disable caching) nor within [0, Max].
type MaxAgeOutOfBoundsError struct {
	Value   int
	Max     int
	Disable int
}

func (err *MaxAgeOutOfBoundsError) Error() string {
	const tmpl = "corslab: max-age %d out of bounds (max: %d; disable caching: %d)"
	return fmt.Sprintf(tmpl, err.Value, err.Max, err.Disable)
}

// An IncompatibleOriginPatternError indicates an origin pattern that
// conflicts with the rest of its policy:
//   - Value "*" with Reason "credentialed": the wildcard origin was
//     combined with credentialed access, which browsers refuse anyway;
//   - another Value with Reason "credentialed": an insecure (plain-http,
//     non-localhost) origin was combined with credentialed access;
//   - Reason "psl": a pattern like "https://*.com" covers every subdomain
//     of a public suffix.
type IncompatibleOriginPatternError struct {
	Value  string
	Reason string // credentialed | psl
}

func (err *IncompatibleOriginPatternError) Error() string {
	switch {
	case err.Value == "*" && err.Reason == "credentialed":
		return "corslab: wildcard origin cannot be combined with credentials"
	case err.Reason == "credentialed":
		const tmpl = "corslab: insecure origin %q cannot be combined with credentials"
		return fmt.Sprintf(tmpl, err.Value)
	case err.Reason == "psl":
		const tmpl = "corslab: origin pattern %q covers subdomains of a public suffix"
		return fmt.Sprintf(tmpl, err.Value)
	default:
		return "corslab: incompatible origin pattern " + err.Value
	}
}

// An IncompatibleWildcardResponseHeaderNameError indicates an attempt to
// expose all response headers ("*") on a credentialed policy.
type IncompatibleWildcardResponseHeaderNameError struct{}

func (*IncompatibleWildcardResponseHeaderNameError) Error() string {
	return "corslab: wildcard response-header name cannot be combined with credentials"
}

// All returns an iterator over the individual configuration errors in
// err's tree, flattening any joined errors. Iteration order is that of
// the policy fields being validated but callers should not rely on it.
func All(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		walk(err, yield)
	}
}

func walk(err error, f func(error) bool) bool {
	if err == nil {
		return true
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return f(err)
	}
	for _, err := range joined.Unwrap() {
		if !walk(err, f) {
			return false
		}
	}
	return true
}
