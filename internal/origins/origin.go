// Package origins parses Web origins and the origin patterns that
// cross-origin policies allow, and matches the former against the latter.
package origins

import (
	"strconv"
	"strings"
)

const (
	schemeHostSep = "://"
	hostPortSep   = ':'
	labelSep      = '.'

	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

const (
	// maxHostLen is dominated by the length of an absolute domain name.
	maxHostLen   = 253
	maxSchemeLen = 64
	maxPortLen   = len("65535")
	maxOriginLen = maxSchemeLen + len(schemeHostSep) + maxHostLen + 1 + maxPortLen
)

// An Origin is a serialized [Web origin] broken into its parts,
// as browsers send it in the Origin request header.
//
// [Web origin]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
type Origin struct {
	Scheme string
	// Host is a domain, an IPv4 address, or an IPv6 address without brackets.
	Host string
	// Port is 0 when the origin carries no explicit port.
	Port int
}

// Parse parses s as a serialized origin. It only performs the validation
// that matching requires: the scheme and port are checked, the host is
// merely scanned. Browsers serialize origins in lowercase; Parse does not
// fold case.
func Parse(s string) (Origin, bool) {
	if len(s) > maxOriginLen {
		return Origin{}, false
	}
	scheme, rest, ok := strings.Cut(s, schemeHostSep)
	if !ok || !isScheme(scheme) {
		return Origin{}, false
	}
	host, rest, ok := scanHost(rest)
	if !ok {
		return Origin{}, false
	}
	o := Origin{Scheme: scheme, Host: host}
	if rest == "" {
		return o, true
	}
	if rest[0] != hostPortSep {
		return Origin{}, false
	}
	o.Port, ok = parsePort(rest[1:])
	if !ok {
		return Origin{}, false
	}
	return o, true
}

// String serializes o back into origin form.
func (o Origin) String() string {
	var sb strings.Builder
	sb.WriteString(o.Scheme)
	sb.WriteString(schemeHostSep)
	if strings.IndexByte(o.Host, ':') >= 0 {
		sb.WriteByte('[')
		sb.WriteString(o.Host)
		sb.WriteByte(']')
	} else {
		sb.WriteString(o.Host)
	}
	if o.Port != 0 {
		sb.WriteByte(hostPortSep)
		sb.WriteString(strconv.Itoa(o.Port))
	}
	return sb.String()
}

// scanHost scans a host at the start of s and returns it along with the
// unconsumed rest of s. Bracketed hosts must look like IPv6 addresses and
// are returned without brackets.
func scanHost(s string) (host, rest string, ok bool) {
	if s != "" && s[0] == '[' {
		host, rest, ok = strings.Cut(s[1:], "]")
		return host, rest, ok && strings.IndexByte(host, ':') >= 0
	}
	i := 0
	for i < len(s) && isHostByte(s[i]) {
		i++
	}
	if i == 0 || s[0] == labelSep || i > maxHostLen {
		return "", "", false
	}
	return s[:i], s[i:], true
}

func isScheme(s string) bool {
	// see https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1
	if s == "" || len(s) > maxSchemeLen || !isLowerAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isLowerAlpha(c) && !isDigit(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// parsePort parses the decimal representation of a non-zero port number
// without leading zeros.
func parsePort(s string) (int, bool) {
	if s == "" || len(s) > maxPortLen || s[0] == '0' {
		return 0, false
	}
	port := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		port = 10*port + int(s[i]-'0')
	}
	if port > 1<<16-1 {
		return 0, false
	}
	return port, true
}

func isHostByte(c byte) bool {
	return isLowerAlpha(c) || isDigit(c) || c == '-' || c == '_' || c == labelSep
}

func isLowerAlpha(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
