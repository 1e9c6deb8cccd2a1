package server

import (
	"errors"
	"fmt"

	"github.com/corslab/corslab"
	"github.com/corslab/corslab/cfgerrors"
	"github.com/corslab/corslab/internal/config"
)

// API paths.
const (
	PathPublic      = "/api/public"
	PathRestricted  = "/api/restricted"
	PathLogin       = "/api/login"
	PathProtected   = "/api/protected"
	PathWithHeaders = "/api/with-headers"
	PathLogout      = "/api/logout"
	PathPolicies    = "/api/policies"
)

// Names of the custom headers exchanged on PathWithHeaders.
const (
	CustomRequestHeader  = "X-Custom-Header"
	CustomResponseHeader = "X-Custom-Response-Header"
)

// A RoutePolicy is the cross-origin policy of one API route.
type RoutePolicy struct {
	Path   string         `json:"path"`
	Policy corslab.Policy `json:"policy"`
}

// Policies returns the policy of every API route, as derived from cfg,
// in the order in which the routes are mounted. The result is not validated;
// see [New] and [Validate].
func Policies(cfg config.Config) []RoutePolicy {
	// credentialed applies to every route that reads or writes the session.
	credentialed := func() corslab.Policy {
		return corslab.Policy{
			Origins:         []string{cfg.AppOrigin},
			Credentialed:    true,
			RequestHeaders:  []string{"Content-Type"},
			MaxAgeInSeconds: cfg.PreflightMaxAge,
		}
	}
	return []RoutePolicy{
		{
			Path: PathPublic,
			Policy: corslab.Policy{
				Origins:         []string{"*"},
				MaxAgeInSeconds: cfg.PreflightMaxAge,
			},
		}, {
			Path: PathRestricted,
			Policy: corslab.Policy{
				Origins:         cfg.RestrictedOrigins,
				MaxAgeInSeconds: cfg.PreflightMaxAge,
			},
		},
		{Path: PathLogin, Policy: credentialed()},
		{Path: PathProtected, Policy: credentialed()},
		{
			Path: PathWithHeaders,
			Policy: corslab.Policy{
				Origins:         []string{cfg.AppOrigin},
				RequestHeaders:  []string{CustomRequestHeader, "Content-Type"},
				ResponseHeaders: []string{CustomResponseHeader},
				MaxAgeInSeconds: cfg.PreflightMaxAge,
			},
		},
		{Path: PathLogout, Policy: credentialed()},
		{
			Path: PathPolicies,
			Policy: corslab.Policy{
				Origins:         []string{"*"},
				MaxAgeInSeconds: cfg.PreflightMaxAge,
			},
		},
	}
}

// Validate reports every problem with the route policies derived from cfg.
// Each error is prefixed with the route it concerns; the result can be
// iterated with [cfgerrors.All].
func Validate(cfg config.Config) error {
	_, err := newEvaluators(Policies(cfg), nil)
	return err
}

// newEvaluators builds one evaluator per route. The evaluator of a route
// reports its decisions to observe(path), if observe is non-nil.
func newEvaluators(rps []RoutePolicy, observe func(path string) corslab.Option) (map[string]*corslab.Evaluator, error) {
	evs := make(map[string]*corslab.Evaluator, len(rps))
	var errs []error
	for _, rp := range rps {
		var opts []corslab.Option
		if observe != nil {
			opts = append(opts, observe(rp.Path))
		}
		ev, err := corslab.NewEvaluator(rp.Policy, opts...)
		if err != nil {
			for err := range cfgerrors.All(err) {
				errs = append(errs, fmt.Errorf("%s: %w", rp.Path, err))
			}
			continue
		}
		evs[rp.Path] = ev
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return evs, nil
}
