package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"path"
)

//go:embed openapi.json
var openAPIDocument []byte

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>body { margin: 0; } redoc { display: block; height: 100vh; }</style>
  </head>
  <body>
    <redoc spec-url="{{.DocumentURL}}"></redoc>
    <script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
  </body>
</html>`))

// OpenAPIJSON serves the embedded OpenAPI document for POST /generate-mockup
// and the health routes.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

// OpenAPIDocs renders a Redoc page pointing at the openapi.json sibling of
// the docs route, so the pair keeps working when mounted under a prefix.
func (a *App) OpenAPIDocs(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title       string
		DocumentURL string
	}{
		Title:       "Mockup Service API Docs",
		DocumentURL: path.Join(path.Dir(r.URL.Path), "openapi.json"),
	}
	var buf bytes.Buffer
	if err := docsPage.Execute(&buf, data); err != nil {
		a.error(w, http.StatusInternalServerError, "could not render docs")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
