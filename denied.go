package corslab

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/corslab/corslab/internal/headers"
)

// A DeniedError reports why an [Evaluator] refused a request.
// Method and Headers are only ever set for preflight requests,
// and at most one of them is.
type DeniedError struct {
	Origin string
	// Method is the disallowed method the preflight asked for.
	Method string
	// Headers are the disallowed request headers the preflight asked for,
	// byte-lowercased.
	Headers []string
}

func (err *DeniedError) Error() string {
	const prefix = "The CORS policy for this site does not allow"
	switch {
	case err.Method != "":
		return fmt.Sprintf("%s method %s from the specified Origin: %s", prefix, err.Method, err.Origin)
	case len(err.Headers) > 0:
		return fmt.Sprintf("%s request headers %s from the specified Origin: %s",
			prefix, strings.Join(err.Headers, ", "), err.Origin)
	default:
		return prefix + " access from the specified Origin: " + err.Origin
	}
}

// WriteDenied is the default way an [Evaluator] answers a denied request:
// 403 Forbidden with the JSON body {"error": err.Error()}.
func WriteDenied(w http.ResponseWriter, _ *http.Request, err *DeniedError) {
	w.Header().Set(headers.ContentType, "application/json")
	w.WriteHeader(http.StatusForbidden)
	body := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	_ = json.NewEncoder(w).Encode(body)
}
