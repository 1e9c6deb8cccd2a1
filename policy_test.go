package corslab_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/corslab/corslab"
	"github.com/corslab/corslab/cfgerrors"
)

func TestInvalidPolicy(t *testing.T) {
	cases := []struct {
		desc   string
		policy corslab.Policy
		msgs   []string
	}{
		{
			desc:   "no origin",
			policy: corslab.Policy{},
			msgs: []string{
				"corslab: a policy must allow at least one origin",
			},
		}, {
			desc: "wildcard origin with credentials",
			policy: corslab.Policy{
				Origins:      []string{"*"},
				Credentialed: true,
			},
			msgs: []string{
				"corslab: wildcard origin cannot be combined with credentials",
			},
		}, {
			desc: "insecure origin with credentials",
			policy: corslab.Policy{
				Origins:      []string{"http://example.com"},
				Credentialed: true,
			},
			msgs: []string{
				`corslab: insecure origin "http://example.com" cannot be combined with credentials`,
			},
		}, {
			desc: "subdomains of public suffix",
			policy: corslab.Policy{
				Origins: []string{"https://*.github.io"},
			},
			msgs: []string{
				`corslab: origin pattern "https://*.github.io" covers subdomains of a public suffix`,
			},
		}, {
			desc: "many mistakes at once",
			policy: corslab.Policy{
				Origins:         []string{"null", "https://example.com:443", "*"},
				Credentialed:    true,
				Methods:         []string{"CONNECT", "not a method"},
				RequestHeaders:  []string{"Cookie", "Access-Control-Allow-Origin", "bad header"},
				ResponseHeaders: []string{"*", "Set-Cookie", "Origin"},
				MaxAgeInSeconds: 86401,
			},
			msgs: []string{
				`corslab: prohibited origin pattern "null"`,
				`corslab: prohibited origin pattern "https://example.com:443"`,
				"corslab: wildcard origin cannot be combined with credentials",
				`corslab: forbidden method "CONNECT"`,
				`corslab: invalid method "not a method"`,
				`corslab: forbidden request-header name "Cookie"`,
				`corslab: prohibited request-header name "Access-Control-Allow-Origin"`,
				`corslab: invalid request-header name "bad header"`,
				"corslab: wildcard response-header name cannot be combined with credentials",
				`corslab: forbidden response-header name "Set-Cookie"`,
				`corslab: prohibited response-header name "Origin"`,
				"corslab: max-age 86401 out of bounds (max: 86400; disable caching: -1)",
			},
		}, {
			desc: "max age below -1",
			policy: corslab.Policy{
				Origins:         []string{"https://example.com"},
				MaxAgeInSeconds: -2,
			},
			msgs: []string{
				"corslab: max-age -2 out of bounds (max: 86400; disable caching: -1)",
			},
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			e, err := corslab.NewEvaluator(tc.policy)
			if e != nil || err == nil {
				t.Fatalf("got %v, %v; want nil, non-nil error", e, err)
			}
			var msgs []string
			for err := range cfgerrors.All(err) {
				msgs = append(msgs, err.Error())
			}
			if !slices.Equal(msgs, tc.msgs) {
				t.Errorf("got\n\t%q\nwant\n\t%q", msgs, tc.msgs)
			}
		}
		t.Run(tc.desc, f)
	}
}

func TestWildcardWithCredentialsIsTyped(t *testing.T) {
	_, err := corslab.NewEvaluator(corslab.Policy{
		Origins:      []string{"*"},
		Credentialed: true,
	})
	var target *cfgerrors.IncompatibleOriginPatternError
	if !errors.As(err, &target) {
		t.Fatalf("got %v; want a %T", err, target)
	}
	if target.Value != "*" || target.Reason != "credentialed" {
		t.Errorf("got %+v", *target)
	}
}

func TestDangerousTolerations(t *testing.T) {
	p := corslab.Policy{
		Origins:      []string{"http://example.com", "https://*.com"},
		Credentialed: true,
	}
	p.DangerouslyTolerateInsecureOrigins = true
	p.DangerouslyTolerateSubdomainsOfPublicSuffixes = true
	_, err := corslab.NewEvaluator(p)
	if err != nil {
		t.Errorf("got %v; want nil", err)
	}
}

func TestPolicyIsNormalized(t *testing.T) {
	cases := []struct {
		desc   string
		policy corslab.Policy
		want   corslab.Policy
	}{
		{
			desc: "any origin",
			policy: corslab.Policy{
				Origins:         []string{"https://example.com", "*"},
				Methods:         []string{"get", "POST", "delete", "PURGE"},
				ResponseHeaders: []string{"content-type", "x-custom-response-header"},
			},
			want: corslab.Policy{
				Origins:         []string{"*"},
				Methods:         []string{"DELETE", "PURGE"},
				ResponseHeaders: []string{"X-Custom-Response-Header"},
			},
		}, {
			desc: "credentialed list",
			policy: corslab.Policy{
				Origins:         []string{"https://your-production-domain.com", "http://localhost:5173", "http://localhost:5173"},
				Credentialed:    true,
				RequestHeaders:  []string{"x-custom-header", "Content-Type", "X-CUSTOM-HEADER"},
				MaxAgeInSeconds: -1,
			},
			want: corslab.Policy{
				Origins:         []string{"http://localhost:5173", "https://your-production-domain.com"},
				Credentialed:    true,
				RequestHeaders:  []string{"Content-Type", "X-Custom-Header"},
				MaxAgeInSeconds: -1,
			},
		}, {
			desc: "wildcards",
			policy: corslab.Policy{
				Origins:         []string{"*"},
				Methods:         []string{"PUT", "*"},
				RequestHeaders:  []string{"Authorization", "*", "X-Foo"},
				ResponseHeaders: []string{"*"},
				MaxAgeInSeconds: 30,
			},
			want: corslab.Policy{
				Origins:         []string{"*"},
				Methods:         []string{"*"},
				RequestHeaders:  []string{"*", "Authorization"},
				ResponseHeaders: []string{"*"},
				MaxAgeInSeconds: 30,
			},
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			e, err := corslab.NewEvaluator(tc.policy)
			if err != nil {
				t.Fatal(err)
			}
			got := e.Policy()
			assertPolicyEqual(t, got, &tc.want)
			// round trip
			e2, err := corslab.NewEvaluator(*got)
			if err != nil {
				t.Fatal(err)
			}
			assertPolicyEqual(t, e2.Policy(), got)
		}
		t.Run(tc.desc, f)
	}
}

func assertPolicyEqual(t *testing.T, got, want *corslab.Policy) {
	t.Helper()
	if !slices.Equal(got.Origins, want.Origins) {
		t.Errorf("Origins: got %q; want %q", got.Origins, want.Origins)
	}
	if got.Credentialed != want.Credentialed {
		t.Errorf("Credentialed: got %t; want %t", got.Credentialed, want.Credentialed)
	}
	if !slices.Equal(got.Methods, want.Methods) {
		t.Errorf("Methods: got %q; want %q", got.Methods, want.Methods)
	}
	if !slices.Equal(got.RequestHeaders, want.RequestHeaders) {
		t.Errorf("RequestHeaders: got %q; want %q", got.RequestHeaders, want.RequestHeaders)
	}
	if !slices.Equal(got.ResponseHeaders, want.ResponseHeaders) {
		t.Errorf("ResponseHeaders: got %q; want %q", got.ResponseHeaders, want.ResponseHeaders)
	}
	if got.MaxAgeInSeconds != want.MaxAgeInSeconds {
		t.Errorf("MaxAgeInSeconds: got %d; want %d", got.MaxAgeInSeconds, want.MaxAgeInSeconds)
	}
}

func TestPolicyReturnsCopy(t *testing.T) {
	e, err := corslab.NewEvaluator(corslab.Policy{
		Origins: []string{"http://localhost:5173"},
	})
	if err != nil {
		t.Fatal(err)
	}
	e.Policy().Origins[0] = "https://evil.example"
	if got := e.Policy().Origins[0]; got != "http://localhost:5173" {
		t.Errorf("got %q; want %q", got, "http://localhost:5173")
	}
}
