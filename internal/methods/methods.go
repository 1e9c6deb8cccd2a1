// Package methods classifies HTTP methods the way browsers do when they
// decide whether a cross-origin request requires preflight.
package methods

import (
	"net/http"

	"github.com/corslab/corslab/internal/util"
	"golang.org/x/net/http/httpguts"
)

// IsValid reports whether name is a syntactically valid method,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#concept-method
func IsValid(name string) bool {
	// A method is a token, which is also the production for header names.
	return httpguts.ValidHeaderFieldName(name)
}

// Normalize returns the [normalized] form of name: the handful of methods
// whose names browsers uppercase are uppercased; others are left untouched,
// since method names are otherwise case-sensitive.
//
// [normalized]: https://fetch.spec.whatwg.org/#concept-method-normalize
func Normalize(name string) string {
	upper := util.ByteUppercase(name)
	if normalizable.Contains(upper) {
		return upper
	}
	return name
}

var normalizable = util.NewSet(
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPost,
	http.MethodPut,
)

// IsForbidden reports whether browsers refuse to send requests with method
// name, regardless of case.
func IsForbidden(name string) bool {
	return forbidden.Contains(util.ByteUppercase(name))
}

var forbidden = util.NewSet("CONNECT", "TRACE", "TRACK")

// IsSafelisted reports whether name is a CORS-safelisted method.
// Such methods never trigger preflight on their own.
func IsSafelisted(name string) bool {
	return safelisted.Contains(name)
}

var safelisted = util.NewSet(
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
)
