package corslab

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/corslab/corslab/cfgerrors"
	"github.com/corslab/corslab/internal/headers"
	"github.com/corslab/corslab/internal/methods"
	"github.com/corslab/corslab/internal/origins"
	"github.com/corslab/corslab/internal/util"
)

// A Policy is the cross-origin policy of a route.
// Settings described as "prohibited" make [NewEvaluator] fail.
//
// # Origins
//
// Origins lists the Web origins allowed to read the route's responses,
// in ASCII serialized form:
//
//	Origins: []string{"http://localhost:5173", "https://your-production-domain.com"},
//
// A single asterisk allows all origins, but only when Credentialed is unset.
// A leading "*." in the host denotes one or more arbitrary DNS labels
// ("https://*.example.com" covers "https://api.example.com" but not
// "https://example.com"), and an asterisk in place of the port denotes any
// port, including none ("http://localhost:*").
//
// At least one origin is required. The null origin, the file scheme and
// explicit default ports (":80" for http, ":443" for https) are prohibited.
// With Credentialed set, origins that are neither https nor local are
// prohibited unless DangerouslyTolerateInsecureOrigins is set. Patterns that
// cover all subdomains of a [public suffix], such as "https://*.com", are
// prohibited unless DangerouslyTolerateSubdomainsOfPublicSuffixes is set.
//
// # Credentialed
//
// Credentialed allows browsers to send cookies along with cross-origin
// requests and to let scripts read the responses to such requests.
//
// # Methods
//
// Methods lists the methods allowed in addition to GET, HEAD and POST,
// which never need to be listed. Names are case-sensitive, except that
// the standard methods are normalized to uppercase. A single asterisk
// allows all methods. CONNECT, TRACE and TRACK are prohibited.
//
// # RequestHeaders
//
// RequestHeaders lists the request headers scripts may set. Names are
// case-insensitive. A single asterisk allows all of them; unless
// Credentialed is set, it does not cover Authorization, which must then be
// listed explicitly. Headers that browsers manage themselves (Cookie,
// Origin, ...) and CORS response headers are prohibited.
//
// # ResponseHeaders
//
// ResponseHeaders lists the response headers scripts may read, beyond the
// few that are always readable (Content-Type, ...). A single asterisk
// exposes all of them, but only when Credentialed is unset. Set-Cookie and
// CORS request headers are prohibited.
//
// # MaxAgeInSeconds
//
// MaxAgeInSeconds bounds how long browsers may cache a successful
// preflight. Zero leaves the browser default (five seconds), -1 disables
// caching, and values above 86400 are prohibited.
//
// [public suffix]: https://publicsuffix.org/
type Policy struct {
	// Precludes comparability and unkeyed struct literals.
	_ [0]func()

	Origins                                       []string `json:"origins"`
	Credentialed                                  bool     `json:"credentialed"`
	Methods                                       []string `json:"methods,omitempty"`
	RequestHeaders                                []string `json:"request_headers,omitempty"`
	ResponseHeaders                               []string `json:"response_headers,omitempty"`
	MaxAgeInSeconds                               int      `json:"max_age_in_seconds,omitempty"`
	DangerouslyTolerateInsecureOrigins            bool     `json:"dangerously_tolerate_insecure_origins,omitempty"`
	DangerouslyTolerateSubdomainsOfPublicSuffixes bool     `json:"dangerously_tolerate_subdomains_of_public_suffixes,omitempty"`
}

const (
	maxAgeUpperBound = 86400 // Firefox's cap; Chromium caps at 7200
	maxAgeDisable    = -1
)

// internalPolicy is the validated, query-friendly form of a Policy.
type internalPolicy struct {
	origins            origins.Set // empty iff anyOrigin
	anyOrigin          bool
	credentialed       bool // => !anyOrigin
	allowedMethods     util.Set
	anyMethod          bool
	allowedReqHdrs     headers.SortedSet
	anyReqHdrs         bool
	allowAuthorization bool
	aceh               string
	acma               string

	tolerateInsecureOrigins      bool
	tolerateSubsOfPublicSuffixes bool
}

func newInternalPolicy(p *Policy) (*internalPolicy, error) {
	ip := internalPolicy{
		credentialed:                 p.Credentialed,
		tolerateInsecureOrigins:      p.DangerouslyTolerateInsecureOrigins,
		tolerateSubsOfPublicSuffixes: p.DangerouslyTolerateSubdomainsOfPublicSuffixes,
	}
	// errors.Join is called at most once, after every field was checked,
	// so that all mistakes get reported together.
	errs := ip.validateOrigins(nil, p.Origins)
	errs = ip.validateMethods(errs, p.Methods)
	errs = ip.validateRequestHeaders(errs, p.RequestHeaders)
	errs = ip.validateResponseHeaders(errs, p.ResponseHeaders)
	errs = ip.validateMaxAge(errs, p.MaxAgeInSeconds)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &ip, nil
}

func (ip *internalPolicy) validateOrigins(errs []error, raws []string) []error {
	if len(raws) == 0 {
		return append(errs, &cfgerrors.UnacceptableOriginPatternError{Reason: "missing"})
	}
	var ps []origins.Pattern
	for _, raw := range raws {
		if raw == headers.ValueWildcard {
			if ip.credentialed {
				errs = append(errs, &cfgerrors.IncompatibleOriginPatternError{
					Value:  raw,
					Reason: "credentialed",
				})
				continue
			}
			ip.anyOrigin = true
			continue
		}
		p, err := origins.ParsePattern(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		// Insecure origins are no worse than "*" without credentials,
		// so they are only a problem with credentials.
		if ip.credentialed && !ip.tolerateInsecureOrigins && p.IsDeemedInsecure() {
			errs = append(errs, &cfgerrors.IncompatibleOriginPatternError{
				Value:  raw,
				Reason: "credentialed",
			})
			continue
		}
		if p.Subdomains && !ip.tolerateSubsOfPublicSuffixes && p.HostIsEffectiveTLD() {
			errs = append(errs, &cfgerrors.IncompatibleOriginPatternError{
				Value:  raw,
				Reason: "psl",
			})
			continue
		}
		ps = append(ps, p)
	}
	if !ip.anyOrigin {
		ip.origins = origins.NewSet(ps...)
	}
	return errs
}

func (ip *internalPolicy) validateMethods(errs []error, names []string) []error {
	for _, name := range names {
		if name == headers.ValueWildcard {
			ip.anyMethod = true
			continue
		}
		if !methods.IsValid(name) {
			errs = append(errs, &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "invalid",
			})
			continue
		}
		if methods.IsForbidden(name) {
			errs = append(errs, &cfgerrors.UnacceptableMethodError{
				Value:  name,
				Reason: "forbidden",
			})
			continue
		}
		name = methods.Normalize(name)
		if methods.IsSafelisted(name) {
			// allowed by the CORS protocol without being listed
			continue
		}
		ip.allowedMethods.Add(name)
	}
	if ip.anyMethod {
		ip.allowedMethods = util.Set{}
	}
	return errs
}

func (ip *internalPolicy) validateRequestHeaders(errs []error, names []string) []error {
	var allowed []string
	for _, name := range names {
		if name == headers.ValueWildcard {
			ip.anyReqHdrs = true
			continue
		}
		if !headers.IsValid(name) {
			errs = append(errs, reqHeaderErr(name, "invalid"))
			continue
		}
		// Browsers byte-lowercase the names they list in ACRH.
		normalized := util.ByteLowercase(name)
		switch {
		case normalized == headers.Authorization:
			ip.allowAuthorization = true
		case headers.IsForbiddenRequestHeaderName(normalized):
			errs = append(errs, reqHeaderErr(name, "forbidden"))
			continue
		case headers.IsProhibitedRequestHeaderName(normalized):
			errs = append(errs, reqHeaderErr(name, "prohibited"))
			continue
		}
		allowed = append(allowed, normalized)
	}
	if !ip.anyReqHdrs {
		ip.allowedReqHdrs = headers.NewSortedSet(allowed...)
	}
	return errs
}

func reqHeaderErr(name, reason string) error {
	return &cfgerrors.UnacceptableHeaderNameError{
		Value:  name,
		Type:   "request",
		Reason: reason,
	}
}

func (ip *internalPolicy) validateResponseHeaders(errs []error, names []string) []error {
	var (
		exposed   util.Set
		exposeAll bool
	)
	for _, name := range names {
		if name == headers.ValueWildcard {
			// With credentials, browsers read "*" as a literal header name.
			if ip.credentialed {
				errs = append(errs, new(cfgerrors.IncompatibleWildcardResponseHeaderNameError))
				continue
			}
			exposeAll = true
			continue
		}
		if !headers.IsValid(name) {
			errs = append(errs, resHeaderErr(name, "invalid"))
			continue
		}
		normalized := util.ByteLowercase(name)
		switch {
		case headers.IsForbiddenResponseHeaderName(normalized):
			errs = append(errs, resHeaderErr(name, "forbidden"))
		case headers.IsProhibitedResponseHeaderName(normalized):
			errs = append(errs, resHeaderErr(name, "prohibited"))
		case headers.IsSafelistedResponseHeaderName(normalized):
			// always readable
		default:
			exposed.Add(normalized)
		}
	}
	switch {
	case exposeAll:
		ip.aceh = headers.ValueWildcard
	case exposed.Size() > 0:
		ip.aceh = strings.Join(exposed.Sorted(), headers.ValueSep)
	}
	return errs
}

func resHeaderErr(name, reason string) error {
	return &cfgerrors.UnacceptableHeaderNameError{
		Value:  name,
		Type:   "response",
		Reason: reason,
	}
}

func (ip *internalPolicy) validateMaxAge(errs []error, delta int) []error {
	switch {
	case delta < maxAgeDisable || maxAgeUpperBound < delta:
		return append(errs, &cfgerrors.MaxAgeOutOfBoundsError{
			Value:   delta,
			Max:     maxAgeUpperBound,
			Disable: maxAgeDisable,
		})
	case delta == maxAgeDisable:
		ip.acma = "0"
	case delta > 0:
		ip.acma = strconv.Itoa(delta)
	}
	return errs
}

// newPolicy returns the normalized Policy that ip was built from.
// Building an internalPolicy from the result yields an equivalent one.
func newPolicy(ip *internalPolicy) *Policy {
	var p Policy
	p.Credentialed = ip.credentialed
	p.DangerouslyTolerateInsecureOrigins = ip.tolerateInsecureOrigins
	p.DangerouslyTolerateSubdomainsOfPublicSuffixes = ip.tolerateSubsOfPublicSuffixes
	if ip.anyOrigin {
		p.Origins = []string{headers.ValueWildcard}
	} else {
		p.Origins = ip.origins.Patterns()
	}
	switch {
	case ip.anyMethod:
		p.Methods = []string{headers.ValueWildcard}
	case ip.allowedMethods.Size() > 0:
		p.Methods = ip.allowedMethods.Sorted()
	}
	if ip.anyReqHdrs {
		p.RequestHeaders = []string{headers.ValueWildcard}
		if ip.allowAuthorization {
			p.RequestHeaders = append(p.RequestHeaders, "Authorization")
		}
	} else if ip.allowedReqHdrs.Size() > 0 {
		p.RequestHeaders = ip.allowedReqHdrs.Canonical()
	}
	if ip.aceh == headers.ValueWildcard {
		p.ResponseHeaders = []string{headers.ValueWildcard}
	} else if ip.aceh != "" {
		for name := range strings.SplitSeq(ip.aceh, headers.ValueSep) {
			p.ResponseHeaders = append(p.ResponseHeaders, http.CanonicalHeaderKey(name))
		}
	}
	switch ip.acma {
	case "":
	case "0":
		p.MaxAgeInSeconds = maxAgeDisable
	default:
		p.MaxAgeInSeconds, _ = strconv.Atoi(ip.acma)
	}
	return &p
}
