package handlers

import (
	"errors"
	"net/http"

	"scenestudio/internal/domain"
	"scenestudio/internal/imagedata"
)

type generateResponse struct {
	Images []imagedata.Record `json:"images"`
	Error  *errorBody         `json:"error,omitempty"`
}

// Generate runs the sequential generation loop for the current scene. A
// mid-run provider failure answers 502 but still carries the images that
// finished before the failure.
//
// The run works on a clone taken under the lock; scene mutations that land
// while the run is in flight apply to the live scene only.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	snapshot := a.Scene.Clone()
	a.mu.Unlock()

	results, err := a.Orch.Generate(r.Context(), snapshot, nil)
	if err != nil {
		status, code := generateErrorStatus(err)
		a.json(w, status, generateResponse{
			Images: results,
			Error:  &errorBody{Code: code, Message: err.Error()},
		})
		return
	}
	a.json(w, http.StatusOK, generateResponse{Images: results})
}

// Edit runs a single edit call against the scene's base image. The run works
// on a clone; the result is written back to the live scene under the lock.
func (a *App) Edit(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	snapshot := a.Scene.Clone()
	a.mu.Unlock()

	rec, err := a.Orch.Edit(r.Context(), snapshot)
	if err != nil {
		status, code := generateErrorStatus(err)
		a.error(w, status, code, err.Error())
		return
	}

	a.mu.Lock()
	a.Scene.Base = &rec
	a.mu.Unlock()

	a.json(w, http.StatusOK, generateResponse{Images: []imagedata.Record{rec}})
}

func generateErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRequestRunning):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrSceneIncomplete):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, domain.ErrProviderFailure):
		return http.StatusBadGateway, "bad_gateway"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
