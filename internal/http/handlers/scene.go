package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"scenestudio/internal/imagedata"
	"scenestudio/internal/scene"
)

// Slot names for the scene's single-image targets.
const (
	SlotLocation = "location"
	SlotStyle    = "style"
	SlotBase     = "base"
)

const maxBulkUploadBytes = 64 << 20

type sceneView struct {
	Text           string            `json:"text"`
	AspectRatio    string            `json:"aspectRatio"`
	Lighting       string            `json:"lighting"`
	Camera         string            `json:"camera"`
	NumberOfImages int               `json:"numberOfImages"`
	Characters     []*scene.Element  `json:"characters"`
	Objects        []*scene.Element  `json:"objects"`
	LocationImage  *imagedata.Record `json:"locationImage,omitempty"`
	StyleImage     *imagedata.Record `json:"styleImage,omitempty"`
	BaseImage      *imagedata.Record `json:"baseImage,omitempty"`
	EditText       string            `json:"editText"`
	Prompt         string            `json:"prompt"`
}

// viewLocked builds the response snapshot. Callers hold a.mu.
func (a *App) viewLocked() sceneView {
	s := a.Scene
	return sceneView{
		Text:           s.Text,
		AspectRatio:    s.AspectRatio,
		Lighting:       s.Lighting,
		Camera:         s.Camera,
		NumberOfImages: s.NumberOfImages,
		Characters:     s.Characters.Elements(),
		Objects:        s.Objects.Elements(),
		LocationImage:  s.Location,
		StyleImage:     s.Style,
		BaseImage:      s.Base,
		EditText:       s.EditText,
		Prompt:         scene.BuildPrompt(s),
	}
}

func (a *App) listByName(name string) *scene.List {
	switch name {
	case "characters":
		return a.Scene.Characters
	case "objects":
		return a.Scene.Objects
	default:
		return nil
	}
}

func (a *App) GetScene(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	view := a.viewLocked()
	a.mu.Unlock()
	a.json(w, http.StatusOK, view)
}

type sceneUpdateRequest struct {
	Text           *string `json:"text"`
	AspectRatio    *string `json:"aspectRatio"`
	Lighting       *string `json:"lighting"`
	Camera         *string `json:"camera"`
	NumberOfImages *int    `json:"numberOfImages"`
	EditText       *string `json:"editText"`
}

// UpdateScene applies the provided fields and leaves the rest untouched.
// Out-of-range values are clamped rather than rejected.
func (a *App) UpdateScene(w http.ResponseWriter, r *http.Request) {
	var req sceneUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	a.mu.Lock()
	s := a.Scene
	if req.Text != nil {
		s.Text = *req.Text
	}
	if req.AspectRatio != nil {
		s.AspectRatio = *req.AspectRatio
	}
	if req.Lighting != nil {
		s.Lighting = *req.Lighting
	}
	if req.Camera != nil {
		s.Camera = *req.Camera
	}
	if req.NumberOfImages != nil {
		s.NumberOfImages = *req.NumberOfImages
	}
	if req.EditText != nil {
		s.EditText = *req.EditText
	}
	s.Normalize()
	view := a.viewLocked()
	a.mu.Unlock()

	a.json(w, http.StatusOK, view)
}

func (a *App) AddListElement(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	l := a.listByName(chi.URLParam(r, "list"))
	if l == nil {
		a.mu.Unlock()
		a.error(w, http.StatusNotFound, "not_found", "unknown list")
		return
	}
	l.Add()
	view := a.viewLocked()
	a.mu.Unlock()

	a.json(w, http.StatusCreated, view)
}

func (a *App) RemoveListElement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid element id")
		return
	}

	a.mu.Lock()
	l := a.listByName(chi.URLParam(r, "list"))
	if l == nil {
		a.mu.Unlock()
		a.error(w, http.StatusNotFound, "not_found", "unknown list")
		return
	}
	l.Remove(id)
	view := a.viewLocked()
	a.mu.Unlock()

	a.json(w, http.StatusOK, view)
}

type attachImageRequest struct {
	Image    string `json:"image"`
	FileName string `json:"fileName"`
}

// AttachListImage replaces an element's image with the posted data URL. A
// malformed data URL clears the slot instead of failing the request, so the
// session keeps working after a bad upload.
func (a *App) AttachListImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid element id")
		return
	}
	var req attachImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var img *imagedata.Record
	rec, err := imagedata.Decode(req.Image)
	if err != nil {
		a.Logger.Warn().Err(err).Str("file", req.FileName).Msg("image rejected, clearing slot")
	} else {
		img = &rec
	}

	a.mu.Lock()
	l := a.listByName(chi.URLParam(r, "list"))
	if l == nil {
		a.mu.Unlock()
		a.error(w, http.StatusNotFound, "not_found", "unknown list")
		return
	}
	if !l.AttachImage(id, img, req.FileName) {
		a.mu.Unlock()
		a.error(w, http.StatusNotFound, "not_found", "unknown element")
		return
	}
	view := a.viewLocked()
	a.mu.Unlock()

	a.json(w, http.StatusOK, view)
}

func (a *App) ClearListImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid element id")
		return
	}

	a.mu.Lock()
	l := a.listByName(chi.URLParam(r, "list"))
	if l == nil {
		a.mu.Unlock()
		a.error(w, http.StatusNotFound, "not_found", "unknown list")
		return
	}
	if !l.AttachImage(id, nil, "") {
		a.mu.Unlock()
		a.error(w, http.StatusNotFound, "not_found", "unknown element")
		return
	}
	view := a.viewLocked()
	a.mu.Unlock()

	a.json(w, http.StatusOK, view)
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (a *App) ReorderList(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	a.mu.Lock()
	l := a.listByName(chi.URLParam(r, "list"))
	if l == nil {
		a.mu.Unlock()
		a.error(w, http.StatusNotFound, "not_found", "unknown list")
		return
	}
	if !l.Reorder(req.From, req.To) {
		a.mu.Unlock()
		a.error(w, http.StatusBadRequest, "bad_request", "source position out of range")
		return
	}
	view := a.viewLocked()
	a.mu.Unlock()

	a.json(w, http.StatusOK, view)
}

// BulkAddObjects ingests a multipart batch of image files as new objects.
// Non-image parts are skipped; a decode failure abandons the whole batch.
func (a *App) BulkAddObjects(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBulkUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	var uploads []scene.Upload
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "unreadable file part")
				return
			}
			data, err := io.ReadAll(file)
			_ = file.Close()
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "unreadable file part")
				return
			}
			contentType := header.Header.Get("Content-Type")
			if contentType == "" {
				contentType = http.DetectContentType(data)
			}
			uploads = append(uploads, scene.Upload{
				Name:        header.Filename,
				ContentType: contentType,
				Data:        data,
			})
		}
	}

	a.mu.Lock()
	err := a.Scene.Objects.BulkAdd(r.Context(), uploads)
	if err != nil {
		a.mu.Unlock()
		if errors.Is(err, imagedata.ErrFormat) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "bulk add failed")
		return
	}
	view := a.viewLocked()
	a.mu.Unlock()

	a.json(w, http.StatusCreated, view)
}

// SetSlotImage returns a handler that replaces one of the scene's single-image
// slots. The same malformed-upload policy as element images applies.
func (a *App) SetSlotImage(slot string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attachImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}

		var img *imagedata.Record
		rec, err := imagedata.Decode(req.Image)
		if err != nil {
			a.Logger.Warn().Err(err).Str("slot", slot).Msg("image rejected, clearing slot")
		} else {
			img = &rec
		}

		a.mu.Lock()
		a.assignSlotLocked(slot, img)
		view := a.viewLocked()
		a.mu.Unlock()

		a.json(w, http.StatusOK, view)
	}
}

// ClearSlotImage returns a handler that empties one of the single-image slots.
func (a *App) ClearSlotImage(slot string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.assignSlotLocked(slot, nil)
		view := a.viewLocked()
		a.mu.Unlock()

		a.json(w, http.StatusOK, view)
	}
}

func (a *App) assignSlotLocked(slot string, img *imagedata.Record) {
	switch slot {
	case SlotLocation:
		a.Scene.Location = img
	case SlotStyle:
		a.Scene.Style = img
	case SlotBase:
		a.Scene.Base = img
	}
}
