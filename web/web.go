// Package web serves the browser front end of the demo: a page from which
// a real browser sends the demo's requests to the API server, and enforces
// the CORS protocol on them.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/corslab/corslab/client"
)

var (
	//go:embed assets/index.html.tmpl
	templates embed.FS

	//go:embed assets/app.js assets/style.css
	static embed.FS
)

var index = template.Must(template.ParseFS(templates, "assets/index.html.tmpl"))

// button is an action as the page renders it.
type button struct {
	client.Action
	// Spec is the JSON description of the request, read by app.js.
	Spec string
}

type page struct {
	APIBaseURL string
	Buttons    []button
}

// Handler returns the handler of the front end. The page sends its
// requests to the API at apiBaseURL.
func Handler(apiBaseURL string) (http.Handler, error) {
	p := page{APIBaseURL: apiBaseURL}
	for _, a := range client.Actions() {
		spec, err := json.Marshal(struct {
			Method      string            `json:"method"`
			Path        string            `json:"path"`
			Body        any               `json:"body,omitempty"`
			Header      map[string]string `json:"headers,omitempty"`
			Credentials bool              `json:"credentials"`
		}{a.Method, a.Path, a.Body, a.Header, a.Credentials})
		if err != nil {
			return nil, err
		}
		p.Buttons = append(p.Buttons, button{Action: a, Spec: string(spec)})
	}
	assets, err := fs.Sub(static, "assets")
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		if err := index.Execute(&buf, p); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	})
	mux.Handle("GET /app.js", http.FileServerFS(assets))
	mux.Handle("GET /style.css", http.FileServerFS(assets))
	return mux, nil
}
