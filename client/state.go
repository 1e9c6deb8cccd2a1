package client

import (
	"bytes"
	"encoding/json"
)

// A State is the state of a [Dispatcher]: one of [Idle], [Loading],
// [Success] or [Failure].
type State interface {
	state()
}

// Idle is the state before any dispatch and after a reset.
type Idle struct{}

// Loading is the state while a request is in flight.
type Loading struct {
	Action Action
}

// Success is the state after a request got a 2xx response.
type Success struct {
	Action   Action
	Response *Response
}

// Failure is the state after a request failed, for whatever reason.
type Failure struct {
	Action Action
	// Message is the server's "error" field if the response has one, or a
	// description of the failure otherwise.
	Message string
	// Rejected marks a cross-origin denial: a 403 from the server, or a
	// response withheld by the CORS check.
	Rejected bool
	// Response is nil if no response was received or if it was withheld.
	Response *Response
	Err      error
}

func (Idle) state()    {}
func (Loading) state() {}
func (Success) state() {}
func (Failure) state() {}

// Pretty returns the response body, indented if it is JSON.
func (s Success) Pretty() string {
	return pretty(s.Response.Body)
}

func pretty(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

// StateName returns "idle", "loading", "success" or "failure".
func StateName(s State) string {
	switch s.(type) {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}
