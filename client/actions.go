package client

import "net/http"

// An Action is one request that the demo client knows how to make.
type Action struct {
	// Name identifies the action on the command line.
	Name string
	// Title and Hint label the action in user interfaces.
	Title string
	Hint  string

	Method string
	Path   string
	// Body, if non-nil, is sent JSON-encoded.
	Body any
	// Header holds request headers set by the script, beyond those that
	// the browser manages.
	Header map[string]string
	// Credentials makes the request carry, and accept, cookies.
	Credentials bool
}

var catalog = []Action{
	{
		Name:   "public",
		Title:  "Public Request",
		Hint:   "No CORS restrictions",
		Method: http.MethodGet,
		Path:   "/api/public",
	},
	{
		Name:   "restricted",
		Title:  "Restricted Request",
		Hint:   "Specific origin only",
		Method: http.MethodGet,
		Path:   "/api/restricted",
	},
	{
		Name:        "login",
		Title:       "Login (Set Cookie)",
		Hint:        "With credentials",
		Method:      http.MethodPost,
		Path:        "/api/login",
		Body:        map[string]string{"username": "testuser"},
		Credentials: true,
	},
	{
		Name:        "protected",
		Title:       "Protected Data",
		Hint:        "Requires cookie",
		Method:      http.MethodGet,
		Path:        "/api/protected",
		Credentials: true,
	},
	{
		Name:   "custom-headers",
		Title:  "Custom Headers Request",
		Hint:   "Triggers preflight",
		Method: http.MethodPost,
		Path:   "/api/with-headers",
		Body:   map[string]string{"someData": "value"},
		Header: map[string]string{"X-Custom-Header": "custom-value"},
	},
	{
		Name:        "logout",
		Title:       "Logout",
		Hint:        "Expires the cookie",
		Method:      http.MethodPost,
		Path:        "/api/logout",
		Credentials: true,
	},
}

// Actions returns the catalog of actions, in display order.
func Actions() []Action {
	as := make([]Action, len(catalog))
	copy(as, catalog)
	return as
}

// Lookup returns the action named name.
func Lookup(name string) (Action, bool) {
	for _, a := range catalog {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}
