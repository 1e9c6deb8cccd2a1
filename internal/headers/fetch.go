package headers

import (
	"mime"
	"strings"

	"github.com/corslab/corslab/internal/util"
)

// The functions below expect a valid, byte-lowercase header name.

// IsForbiddenRequestHeaderName reports whether browsers refuse to let
// scripts set a request header named name;
// see https://fetch.spec.whatwg.org/#forbidden-header-name.
func IsForbiddenRequestHeaderName(name string) bool {
	return forbiddenReqHdrs.Contains(name) ||
		strings.HasPrefix(name, "proxy-") ||
		strings.HasPrefix(name, "sec-")
}

var forbiddenReqHdrs = util.NewSet(
	"accept-charset",
	"accept-encoding",
	"access-control-request-headers",
	"access-control-request-method",
	"connection",
	"content-length",
	"cookie",
	"cookie2",
	"date",
	"dnt",
	"expect",
	"host",
	"keep-alive",
	"origin",
	"referer",
	"set-cookie",
	"te",
	"trailer",
	"transfer-encoding",
	"upgrade",
	"via",
)

// IsProhibitedRequestHeaderName reports whether name is a response-only
// CORS header; allowing it as a request header is always a mistake.
func IsProhibitedRequestHeaderName(name string) bool {
	return prohibitedReqHdrs.Contains(name)
}

var prohibitedReqHdrs = util.NewSet(
	"access-control-allow-credentials",
	"access-control-allow-headers",
	"access-control-allow-methods",
	"access-control-allow-origin",
	"access-control-expose-headers",
	"access-control-max-age",
)

// IsForbiddenResponseHeaderName reports whether browsers hide a response
// header named name from scripts no matter what;
// see https://fetch.spec.whatwg.org/#forbidden-response-header-name.
func IsForbiddenResponseHeaderName(name string) bool {
	return name == "set-cookie" || name == "set-cookie2"
}

// IsProhibitedResponseHeaderName reports whether name is a request-only
// or preflight-only CORS header; exposing it is always a mistake.
func IsProhibitedResponseHeaderName(name string) bool {
	return prohibitedResHdrs.Contains(name)
}

var prohibitedResHdrs = util.NewSet(
	"origin",
	"access-control-request-method",
	"access-control-request-headers",
	"access-control-allow-methods",
	"access-control-allow-headers",
	"access-control-max-age",
)

// IsSafelistedResponseHeaderName reports whether scripts can read a
// response header named name without it being exposed;
// see https://fetch.spec.whatwg.org/#cors-safelisted-response-header-name.
func IsSafelistedResponseHeaderName(name string) bool {
	return safelistedResHdrs.Contains(name)
}

var safelistedResHdrs = util.NewSet(
	"cache-control",
	"content-language",
	"content-length",
	"content-type",
	"expires",
	"last-modified",
	"pragma",
)

// IsSafelistedRequestHeader reports whether a request header with the given
// name and value can be sent cross-origin without preflight;
// see https://fetch.spec.whatwg.org/#cors-safelisted-request-header.
// Only the checks relevant to script-issued requests are performed.
func IsSafelistedRequestHeader(name, value string) bool {
	const maxValueLen = 128
	if len(value) > maxValueLen {
		return false
	}
	switch name {
	case "accept", "accept-language", "content-language":
		return true
	case "content-type":
		mediatype, _, err := mime.ParseMediaType(value)
		if err != nil {
			return false
		}
		return safelistedContentTypes.Contains(mediatype)
	default:
		return false
	}
}

var safelistedContentTypes = util.NewSet(
	"application/x-www-form-urlencoded",
	"multipart/form-data",
	"text/plain",
)
