package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"mockup/internal/domain"
)

// MockupGenerator runs the mockup pipeline for one request.
type MockupGenerator interface {
	Generate(ctx context.Context, req domain.MockupRequest) (*domain.MockupResult, error)
}

type App struct {
	Mockups  MockupGenerator
	Provider string
	Model    string
}

func NewApp(mockups MockupGenerator, provider, model string) *App {
	return &App{Mockups: mockups, Provider: provider, Model: model}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorResponse{Error: message})
}
