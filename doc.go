/*
Package corslab evaluates HTTP requests against per-route
[Cross-Origin Resource Sharing (CORS)] policies.

It is the core of the corslab demo: a [Policy] describes which Web origins
may read a route's responses, whether they may do so with credentials
(cookies), and which methods and headers they may use. [NewEvaluator]
validates a Policy once, at startup, and refuses dysfunctional or insecure
ones; in particular, a policy that allows all origins ("*") cannot also be
credentialed, because browsers would refuse to honor it anyway.

An [Evaluator] then classifies each request as one of

  - a non-CORS request, which carries no Origin header (curl, server-side
    callers, same-origin navigation). Such requests are allowed: CORS is a
    browser mechanism, and a missing Origin says nothing about the caller;
  - a [CORS-preflight request] (OPTIONS with Access-Control-Request-Method),
    which the evaluator answers on its own, with 204 or 403, without ever
    invoking the route;
  - an actual CORS request, which is either allowed, in which case the
    route runs and its response carries the CORS headers, or denied with
    403 and a JSON body of the form

	{"error": "The CORS policy for this site does not allow access from the specified Origin: https://evil.example"}

    in which case the route does not run at all.

Unlike most CORS middleware, which merely omit the CORS headers and let the
browser hide the response, an Evaluator stops denied requests at the door.
That makes the outcome observable from any client, not only from browsers,
which is the point of the demo.

Because preflight requests use OPTIONS, routes wrapped by an Evaluator must
not be registered with a method-specific pattern that would keep OPTIONS
requests from reaching it.

[CORS-preflight request]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
*/
package corslab
