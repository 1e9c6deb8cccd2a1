package origins

import (
	"net/netip"
	"strings"
	"sync"

	"github.com/corslab/corslab/cfgerrors"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	// subdomainsPrefix marks one or more leading DNS labels.
	subdomainsPrefix = "*."
	// anyPort marks an arbitrary, possibly implicit, port.
	anyPort = "*"
)

// Kind classifies the host of a [Pattern].
type Kind uint8

const (
	Domain Kind = iota
	LoopbackIP
	NonLoopbackIP
)

// A Pattern is a parsed origin pattern, e.g. "https://example.com",
// "https://*.example.com", or "http://localhost:*".
// The zero value is not a valid pattern.
type Pattern struct {
	Scheme string
	// Host excludes the leading "*." of subdomain patterns.
	Host string
	// Subdomains is set for patterns of the form "scheme://*.host",
	// which match proper subdomains of Host but not Host itself.
	Subdomains bool
	// Port is 0 in the absence of an explicit port and -1 for "*".
	Port int
	Kind Kind

	raw string
}

// ParsePattern parses s into a valid [Pattern]. The wildcard origin "*"
// is not a pattern; callers must handle it before calling ParsePattern.
// Errors are of type [*cfgerrors.UnacceptableOriginPatternError].
func ParsePattern(s string) (Pattern, error) {
	if len(s) > maxOriginLen {
		return Pattern{}, originErr(s, "invalid")
	}
	if s == "null" {
		return Pattern{}, originErr(s, "prohibited")
	}
	scheme, rest, ok := strings.Cut(s, schemeHostSep)
	if !ok || !isScheme(scheme) {
		return Pattern{}, originErr(s, "invalid")
	}
	if scheme == "file" {
		return Pattern{}, originErr(s, "prohibited")
	}
	p := Pattern{Scheme: scheme, raw: s}
	rest, err := p.parseHost(rest)
	if err != nil {
		return Pattern{}, err
	}
	if rest == "" {
		return p, nil
	}
	if rest[0] != hostPortSep {
		return Pattern{}, originErr(s, "invalid")
	}
	if rest = rest[1:]; rest == anyPort {
		p.Port = -1
		return p, nil
	}
	if p.Port, ok = parsePort(rest); !ok {
		return Pattern{}, originErr(s, "invalid")
	}
	if isDefaultPort(p.Scheme, p.Port) {
		return Pattern{}, originErr(s, "prohibited")
	}
	return p, nil
}

// parseHost parses the host pattern at the start of s into p and returns
// the unconsumed rest of s.
func (p *Pattern) parseHost(s string) (string, error) {
	var (
		host  string
		rest  string
		isIP  bool
		isIP6 bool
	)
	switch {
	case strings.HasPrefix(s, "["):
		var ok bool
		host, rest, ok = strings.Cut(s[1:], "]")
		if !ok {
			return "", originErr(p.raw, "invalid")
		}
		isIP, isIP6 = true, true
	default:
		s, p.Subdomains = strings.CutPrefix(s, subdomainsPrefix)
		i := 0
		for i < len(s) && isHostByte(s[i]) {
			i++
		}
		host, rest = s[:i], s[i:]
		// No TLD starts with a digit, so a rightmost label that does
		// suggests an IPv4 address.
		label := strings.TrimSuffix(host, string(labelSep))
		label = label[strings.LastIndexByte(label, labelSep)+1:]
		if label == "" {
			return "", originErr(p.raw, "invalid")
		}
		isIP = isDigit(label[0])
		if isIP && p.Subdomains {
			return "", originErr(p.raw, "invalid")
		}
	}
	p.Host = host
	if !isIP {
		if len(host) > maxHostLen {
			return "", originErr(p.raw, "invalid")
		}
		profileOnce.Do(initProfile)
		if _, err := profile.ToASCII(host); err != nil {
			return "", originErr(p.raw, "invalid")
		}
		p.Kind = Domain
		return rest, nil
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || ip.Zone() != "" || ip.Is6() != isIP6 {
		return "", originErr(p.raw, "invalid")
	}
	// Only accept the canonical form, since that is what browsers send.
	if ip.Is4In6() || host != ip.String() {
		return "", originErr(p.raw, "prohibited")
	}
	if ip.IsLoopback() {
		p.Kind = LoopbackIP
	} else {
		p.Kind = NonLoopbackIP
	}
	return rest, nil
}

var (
	profileOnce sync.Once
	profile     *idna.Profile
)

func initProfile() {
	profile = idna.New(
		idna.BidiRule(),
		idna.ValidateLabels(true),
		idna.StrictDomainName(true),
		idna.VerifyDNSLength(true),
	)
}

func isDefaultPort(scheme string, port int) bool {
	return scheme == schemeHTTP && port == 80 ||
		scheme == schemeHTTPS && port == 443
}

func originErr(pattern, reason string) error {
	return &cfgerrors.UnacceptableOriginPatternError{
		Value:  pattern,
		Reason: reason,
	}
}

// String returns p in the form it was parsed from.
func (p Pattern) String() string {
	return p.raw
}

// IsDeemedInsecure reports whether p's scheme is not https and its host is
// neither a loopback address nor localhost. Other schemes may well encrypt
// traffic, but corslab does not assume so.
func (p Pattern) IsDeemedInsecure() bool {
	return p.Scheme != schemeHTTPS &&
		p.Kind != LoopbackIP &&
		p.Host != "localhost"
}

// HostIsEffectiveTLD reports whether p's host is a [public suffix],
// such as "com" or "github.io".
//
// [public suffix]: https://publicsuffix.org/list/
func (p Pattern) HostIsEffectiveTLD() bool {
	if p.Kind != Domain {
		return false
	}
	host := strings.TrimSuffix(p.Host, string(labelSep))
	// The boolean result is false for privately managed suffixes like
	// github.io, which still count here.
	etld, _ := publicsuffix.PublicSuffix(host)
	return etld == host
}

// Matches reports whether o is one of the origins p describes.
func (p Pattern) Matches(o Origin) bool {
	if o.Scheme != p.Scheme {
		return false
	}
	if p.Port != -1 && o.Port != p.Port {
		return false
	}
	if !p.Subdomains {
		return o.Host == p.Host
	}
	sub, ok := strings.CutSuffix(o.Host, p.Host)
	return ok && len(sub) > 1 && sub[len(sub)-1] == labelSep
}
