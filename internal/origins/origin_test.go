package origins_test

import (
	"testing"

	"github.com/corslab/corslab/internal/origins"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  origins.Origin
		ok    bool
	}{
		{"http://localhost:5173", origins.Origin{Scheme: "http", Host: "localhost", Port: 5173}, true},
		{"https://example.com", origins.Origin{Scheme: "https", Host: "example.com"}, true},
		{"http://[::1]:3001", origins.Origin{Scheme: "http", Host: "::1", Port: 3001}, true},
		{"http://127.0.0.1", origins.Origin{Scheme: "http", Host: "127.0.0.1"}, true},
		{"null", origins.Origin{}, false},
		{"", origins.Origin{}, false},
		{"https://", origins.Origin{}, false},
		{"https://.example.com", origins.Origin{}, false},
		{"https://example.com/", origins.Origin{}, false},
		{"https://example.com:", origins.Origin{}, false},
		{"https://example.com:99999", origins.Origin{}, false},
		{"https://Example.com", origins.Origin{}, false},
		{"http://[]", origins.Origin{}, false},
	}
	for _, tc := range cases {
		got, ok := origins.Parse(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Parse(%q): got %+v, %t; want %+v, %t", tc.input, got, ok, tc.want, tc.ok)
		}
		if ok && got.String() != tc.input {
			t.Errorf("%q: String() returned %q", tc.input, got.String())
		}
	}
}

func FuzzParse(f *testing.F) {
	f.Add("http://localhost:5173")
	f.Add("http://[::1]:3001")
	f.Fuzz(func(t *testing.T, s string) {
		o, ok := origins.Parse(s)
		if ok && o.String() != s {
			t.Errorf("round trip: %q became %q", s, o.String())
		}
	})
}
