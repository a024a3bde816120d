// Package handlers exposes the studio session over HTTP: scene editing,
// generation, and the result history.
package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"scenestudio/internal/history"
	"scenestudio/internal/infra"
	"scenestudio/internal/orchestrator"
	"scenestudio/internal/providers/prompt"
	"scenestudio/internal/scene"
	"scenestudio/internal/storage"
)

// App wires the handlers to the session state. The mutex guards the scene;
// generation concurrency is policed by the orchestrator itself so a busy
// session answers 409 instead of queueing.
type App struct {
	mu       sync.Mutex
	Scene    *scene.Scene
	Orch     *orchestrator.Orchestrator
	History  *history.Store
	Enhancer prompt.Enhancer
	Store    *storage.FileStore
	Logger   infra.Logger
}

func NewApp(s *scene.Scene, orch *orchestrator.Orchestrator, hist *history.Store, enhancer prompt.Enhancer, store *storage.FileStore, logger infra.Logger) *App {
	return &App{
		Scene:    s,
		Orch:     orch,
		History:  hist,
		Enhancer: enhancer,
		Store:    store,
		Logger:   logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
