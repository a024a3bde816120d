package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scenestudio/internal/history"
	"scenestudio/pkg/zip"
)

type historyListResponse struct {
	Entries []history.Entry `json:"entries"`
}

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries := a.History.Entries()
	if entries == nil {
		entries = []history.Entry{}
	}
	a.json(w, http.StatusOK, historyListResponse{Entries: entries})
}

func (a *App) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	a.History.Remove(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ClearHistory(w http.ResponseWriter, r *http.Request) {
	a.History.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// DownloadHistoryEntry streams one stored image as a file attachment.
func (a *App) DownloadHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := a.History.Get(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown history entry")
		return
	}
	data, err := entry.Image.Bytes()
	if err != nil {
		a.Logger.Error().Err(err).Str("id", entry.ID).Msg("stored image is unreadable")
		a.error(w, http.StatusInternalServerError, "internal", "stored image is unreadable")
		return
	}
	w.Header().Set("Content-Type", entry.Image.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entryFileName(entry)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ArchiveHistory bundles every stored image into a single zip download.
func (a *App) ArchiveHistory(w http.ResponseWriter, r *http.Request) {
	entries := a.History.Entries()
	if len(entries) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "history is empty")
		return
	}
	var assets []zip.Asset
	for _, entry := range entries {
		data, err := entry.Image.Bytes()
		if err != nil {
			a.Logger.Warn().Err(err).Str("id", entry.ID).Msg("skipping unreadable history entry")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: entryFileName(entry),
			MIME:     entry.Image.MediaType,
			Data:     data,
		})
	}
	archive := zip.ArchiveAssets(assets)
	if len(archive) == 0 {
		a.error(w, http.StatusInternalServerError, "internal", "archive failed")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="history.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// entryFileName derives a download name like gen-1712345678901234.png. The
// entry ID already encodes the kind and timestamp.
func entryFileName(entry history.Entry) string {
	return entry.ID + entry.Image.Extension()
}
