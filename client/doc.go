// Package client is the demo client of corslab.
//
// A [Fetcher] performs the [Actions] of the demo against the API server,
// from the point of view of a page served from a configurable origin. By
// default it plays the part of the browser: requests that are not simple
// are preflighted, and responses that fail the CORS check are withheld and
// reported as a [*CORSError]. A [Dispatcher] runs one action at a time and
// exposes the outcome as a [State].
package client
