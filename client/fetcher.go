package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/netip"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
	"golang.org/x/net/publicsuffix"

	"github.com/corslab/corslab/internal/headers"
	"github.com/corslab/corslab/internal/util"
)

// A CORSError reports a response that a browser would hide from the page.
// Like browsers, the Fetcher withholds the response itself; Reason says
// what was wrong with it, which browsers only tell in their console.
type CORSError struct {
	// Preflight is set when the preflight, rather than the actual request,
	// failed.
	Preflight bool
	Reason    string
}

func (err *CORSError) Error() string {
	if err.Preflight {
		return "Network Error: preflight: " + err.Reason
	}
	return "Network Error: " + err.Reason
}

// An Exchange is one HTTP round trip that a Fetch made.
type Exchange struct {
	Method string
	URL    string
	Status int
}

func (x Exchange) String() string {
	return fmt.Sprintf("%s %s -> %d", x.Method, x.URL, x.Status)
}

// A Response is what the page gets to see of a response.
type Response struct {
	Status int
	// Header only holds the headers that the page may read.
	Header http.Header
	Body   []byte
	// Exchanges lists the preflight, if any, and the actual request.
	Exchanges []Exchange
}

// A Fetcher issues requests on behalf of a page served from a given origin.
// Unless it is raw, it enforces the CORS protocol like a browser does:
// it preflights requests that are not simple, and withholds responses that
// fail the CORS check. A Fetcher keeps its own cookie store, which only
// credentialed requests use. Fetchers are safe for concurrent use.
type Fetcher struct {
	base   *url.URL
	origin string
	client *http.Client
	jar    http.CookieJar
	raw    bool
}

// A FetcherOption customizes a [Fetcher].
type FetcherOption func(*Fetcher)

// WithHTTPClient makes the Fetcher send requests through c.
// The cookie jar of c, if any, is ignored.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		clone := *c
		clone.Jar = nil
		f.client = &clone
	}
}

// WithRaw disables browser emulation: no preflight, no CORS check.
// The Origin header is still sent.
func WithRaw() FetcherOption {
	return func(f *Fetcher) {
		f.raw = true
	}
}

// NewFetcher returns a Fetcher that sends requests to the API at baseURL,
// from a page whose origin is origin. An empty origin makes the Fetcher
// behave like a non-browser client: no Origin header, no CORS check.
func NewFetcher(baseURL, origin string, opts ...FetcherOption) (*Fetcher, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("client: api base url %q is not absolute", baseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	f := Fetcher{
		base:   base,
		origin: strings.TrimRight(origin, "/"),
		client: &http.Client{},
		jar:    jar,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return &f, nil
}

// Origin returns the origin of the page the Fetcher acts for.
func (f *Fetcher) Origin() string {
	return f.origin
}

// Raw reports whether browser emulation is disabled.
func (f *Fetcher) Raw() bool {
	return f.raw
}

// Fetch performs a. A response with an error status is not an error;
// a response withheld by the CORS check is, of type *CORSError.
func (f *Fetcher) Fetch(ctx context.Context, a Action) (*Response, error) {
	u := f.base.JoinPath(a.Path)
	var body []byte
	hdrs := make(http.Header)
	for k, v := range a.Header {
		hdrs.Set(k, v)
	}
	if a.Body != nil {
		var err error
		body, err = json.Marshal(a.Body)
		if err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
		if hdrs.Get(headers.ContentType) == "" {
			hdrs.Set(headers.ContentType, "application/json")
		}
	}
	enforce := !f.raw && f.origin != ""

	res := Response{}
	if enforce && !isSimple(a.Method, hdrs) {
		x, err := f.preflight(ctx, u, a, hdrs)
		res.Exchanges = append(res.Exchanges, x)
		if err != nil {
			return &res, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, a.Method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	req.Header = hdrs
	if f.origin != "" {
		req.Header.Set(headers.Origin, f.origin)
	}
	if a.Credentials {
		for _, c := range f.jar.Cookies(cookieURL(u)) {
			req.AddCookie(c)
		}
	}
	hres, err := f.client.Do(req)
	if err != nil {
		return &res, fmt.Errorf("client: %w", err)
	}
	defer hres.Body.Close()
	res.Exchanges = append(res.Exchanges, Exchange{a.Method, u.String(), hres.StatusCode})
	res.Status = hres.StatusCode
	res.Body, err = io.ReadAll(hres.Body)
	if err != nil {
		return &res, fmt.Errorf("client: read body: %w", err)
	}

	if enforce {
		if reason := checkCORS(hres.Header, f.origin, a.Credentials); reason != "" {
			res.Status, res.Header, res.Body = 0, nil, nil
			return &res, &CORSError{Reason: reason}
		}
	}
	if a.Credentials {
		f.jar.SetCookies(cookieURL(u), hres.Cookies())
	}
	res.Header = hres.Header
	if enforce {
		res.Header = exposed(hres.Header, a.Credentials)
	}
	return &res, nil
}

// cookieURL returns the URL through which the cookie store is accessed for
// requests to u. Browsers deem loopback hosts secure contexts and send
// Secure cookies to them even over plain HTTP; net/http/cookiejar does not.
func cookieURL(u *url.URL) *url.URL {
	if u.Scheme != "http" || !isLoopback(u.Hostname()) {
		return u
	}
	secure := *u
	secure.Scheme = "https"
	return &secure
}

func isLoopback(host string) bool {
	host = util.ByteLowercase(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	return err == nil && addr.IsLoopback()
}

// preflight asks the server for permission to send a non-simple request.
// Preflights never carry credentials.
func (f *Fetcher) preflight(ctx context.Context, u *url.URL, a Action, hdrs http.Header) (Exchange, error) {
	x := Exchange{Method: http.MethodOptions, URL: u.String()}
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, u.String(), nil)
	if err != nil {
		return x, fmt.Errorf("client: %w", err)
	}
	req.Header.Set(headers.Origin, f.origin)
	req.Header.Set(headers.ACRM, a.Method)
	if names := unsafeHeaderNames(hdrs); len(names) > 0 {
		req.Header.Set(headers.ACRH, strings.Join(names, headers.ValueSep))
	}
	res, err := f.client.Do(req)
	if err != nil {
		return x, fmt.Errorf("client: preflight: %w", err)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
	x.Status = res.StatusCode

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return x, &CORSError{Preflight: true, Reason: fmt.Sprintf("status %d is not ok", res.StatusCode)}
	}
	if reason := checkCORS(res.Header, f.origin, a.Credentials); reason != "" {
		return x, &CORSError{Preflight: true, Reason: reason}
	}
	if !isSafelistedMethod(a.Method) && !allowsMethod(res.Header, a.Method, a.Credentials) {
		return x, &CORSError{
			Preflight: true,
			Reason:    fmt.Sprintf("method %s is not allowed by Access-Control-Allow-Methods", a.Method),
		}
	}
	for _, name := range unsafeHeaderNames(hdrs) {
		if !allowsHeader(res.Header, name, a.Credentials) {
			return x, &CORSError{
				Preflight: true,
				Reason:    fmt.Sprintf("request header %s is not allowed by Access-Control-Allow-Headers", name),
			}
		}
	}
	return x, nil
}

// checkCORS performs the CORS check and returns why it failed, if it did;
// see https://fetch.spec.whatwg.org/#cors-check.
func checkCORS(h http.Header, origin string, credentials bool) string {
	acao := h.Values(headers.ACAO)
	switch {
	case len(acao) == 0:
		return "no Access-Control-Allow-Origin header is present on the requested resource"
	case len(acao) > 1:
		return "the Access-Control-Allow-Origin header contains multiple values"
	case acao[0] == headers.ValueWildcard && credentials:
		return "the value of the Access-Control-Allow-Origin header must not be the wildcard '*' when the request's credentials mode is 'include'"
	case acao[0] != headers.ValueWildcard && acao[0] != origin:
		return fmt.Sprintf("the Access-Control-Allow-Origin header has a value %q that is not equal to the supplied origin", acao[0])
	}
	if credentials && h.Get(headers.ACAC) != headers.ValueTrue {
		return "the value of the Access-Control-Allow-Credentials header is not 'true' while the request's credentials mode is 'include'"
	}
	return ""
}

func isSafelistedMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodPost
}

// isSimple reports whether a request can go without preflight.
func isSimple(method string, hdrs http.Header) bool {
	return isSafelistedMethod(method) && len(unsafeHeaderNames(hdrs)) == 0
}

// unsafeHeaderNames returns the sorted, lowercased names of the headers in
// hdrs that require a preflight, as browsers list them in ACRH.
func unsafeHeaderNames(hdrs http.Header) []string {
	var names util.Set
	for k, vs := range hdrs {
		name := util.ByteLowercase(k)
		for _, v := range vs {
			if !headers.IsSafelistedRequestHeader(name, v) {
				names.Add(name)
			}
		}
	}
	return names.Sorted()
}

func allowsMethod(h http.Header, method string, credentials bool) bool {
	acam := h.Values(headers.ACAM)
	if !credentials && httpguts.HeaderValuesContainsToken(acam, headers.ValueWildcard) {
		return true
	}
	for _, v := range acam {
		for m := range strings.SplitSeq(v, headers.ValueSep) {
			// Only the standard methods are normalized by browsers.
			if strings.TrimSpace(m) == method {
				return true
			}
		}
	}
	return false
}

func allowsHeader(h http.Header, name string, credentials bool) bool {
	acah := h.Values(headers.ACAH)
	if !credentials && name != headers.Authorization &&
		httpguts.HeaderValuesContainsToken(acah, headers.ValueWildcard) {
		return true
	}
	return httpguts.HeaderValuesContainsToken(acah, name)
}

// exposed returns the headers of h that a page may read.
func exposed(h http.Header, credentials bool) http.Header {
	aceh := h.Values(headers.ACEH)
	all := !credentials && httpguts.HeaderValuesContainsToken(aceh, headers.ValueWildcard)
	out := make(http.Header)
	for k, vs := range h {
		name := util.ByteLowercase(k)
		if all || headers.IsSafelistedResponseHeaderName(name) ||
			httpguts.HeaderValuesContainsToken(aceh, name) {
			out[k] = slices.Clone(vs)
		}
	}
	// Browsers never let scripts read cookies off responses.
	out.Del("Set-Cookie")
	return out
}
