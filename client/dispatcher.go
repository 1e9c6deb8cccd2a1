package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrBusy is returned when a dispatch or reset is attempted while a request
// is in flight.
var ErrBusy = errors.New("client: a request is already in flight")

// A Doer performs actions. *Fetcher is the Doer used outside tests.
type Doer interface {
	Fetch(ctx context.Context, a Action) (*Response, error)
}

// A Dispatcher runs one action at a time and keeps the outcome of the last
// one. Dispatchers are safe for concurrent use.
type Dispatcher struct {
	doer Doer

	mu       sync.Mutex
	state    State
	inFlight bool
}

// NewDispatcher returns an idle Dispatcher that performs actions with d.
func NewDispatcher(d Doer) *Dispatcher {
	return &Dispatcher{
		doer:  d,
		state: Idle{},
	}
}

// State returns the current state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dispatch performs a and returns the resulting state, a Success or a
// Failure. The state is Loading in the meantime. If another dispatch is in
// flight, Dispatch returns ErrBusy and leaves the state alone.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (State, error) {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.inFlight = true
	d.state = Loading{Action: a}
	d.mu.Unlock()

	// A panicking Doer leaves the Dispatcher idle rather than busy.
	var next State = Idle{}
	defer func() {
		d.mu.Lock()
		d.state = next
		d.inFlight = false
		d.mu.Unlock()
	}()
	res, err := d.doer.Fetch(ctx, a)
	next = settle(a, res, err)
	return next, nil
}

// Reset returns to Idle without making any request.
// It returns ErrBusy if a request is in flight.
func (d *Dispatcher) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight {
		return ErrBusy
	}
	d.state = Idle{}
	return nil
}

// settle turns the outcome of a fetch into a Success or a Failure.
func settle(a Action, res *Response, err error) State {
	if err != nil {
		var cerr *CORSError
		return Failure{
			Action:   a,
			Message:  err.Error(),
			Rejected: errors.As(err, &cerr),
			Err:      err,
		}
	}
	if res.Status >= 200 && res.Status <= 299 {
		return Success{Action: a, Response: res}
	}
	msg := serverError(res.Body)
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", res.Status)
	}
	return Failure{
		Action:   a,
		Message:  msg,
		Rejected: res.Status == http.StatusForbidden,
		Response: res,
	}
}

// serverError returns the "error" field of body, if any.
func serverError(body []byte) string {
	var v struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &v) != nil {
		return ""
	}
	return v.Error
}
