// Package headers holds the header names, values and classification rules
// of the CORS protocol.
package headers

import (
	"net/http"

	"golang.org/x/net/http/httpguts"
)

// header names in canonical format
const (
	Origin = "Origin"

	// preflight-only request headers
	ACRM = "Access-Control-Request-Method"
	ACRH = "Access-Control-Request-Headers"

	// common response headers
	ACAO = "Access-Control-Allow-Origin"
	ACAC = "Access-Control-Allow-Credentials"

	// preflight-only response headers
	ACAM = "Access-Control-Allow-Methods"
	ACAH = "Access-Control-Allow-Headers"
	ACMA = "Access-Control-Max-Age"

	// actual-only response headers
	ACEH = "Access-Control-Expose-Headers"

	Vary        = "Vary"
	ContentType = "Content-Type"
)

// Authorization is byte-lowercase, as browsers list it in ACRH.
const Authorization = "authorization"

const (
	ValueTrue     = "true"
	ValueWildcard = "*"
	// ValueSep separates the elements of list-based header values.
	// Whitespace is optional, so none is used.
	ValueSep = ","
)

// IsValid reports whether name is a valid header name,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#header-name
func IsValid(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// First returns the first value associated with key k in hdrs
// and reports whether such a value was found.
// Unlike [http.Header.Get], First does not canonicalize k;
// callers must pass a canonical key.
func First(hdrs http.Header, k string) (string, bool) {
	v := hdrs[k]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}
