package handlers

import (
	"net/http"
)

const indexMessage = "Mockup generation service is running. POST multipart form data to /generate-mockup.\n"

func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexMessage))
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": a.Provider,
		"model":    a.Model,
	})
}
