package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"scenestudio/internal/history"
	"scenestudio/internal/http/handlers"
	"scenestudio/internal/http/httpapi"
	"scenestudio/internal/imagedata"
	"scenestudio/internal/orchestrator"
	"scenestudio/internal/providers/image"
	"scenestudio/internal/providers/prompt"
	"scenestudio/internal/scene"
	"scenestudio/internal/storage"
)

type scriptedGenerator struct {
	calls  int
	failOn int
}

func (s *scriptedGenerator) Generate(ctx context.Context, req image.GenerateRequest) (imagedata.Record, error) {
	s.calls++
	if s.failOn != 0 && s.calls == s.failOn {
		return imagedata.Record{}, fmt.Errorf("upstream rejected the request")
	}
	return imagedata.FromBytes([]byte(fmt.Sprintf("image-%d", s.calls)), "image/png"), nil
}

type memoryRepo struct {
	entries []history.Entry
}

func (m *memoryRepo) Load(ctx context.Context) ([]history.Entry, error) { return m.entries, nil }
func (m *memoryRepo) Save(ctx context.Context, entries []history.Entry) error {
	m.entries = append([]history.Entry(nil), entries...)
	return nil
}

func newTestServer(t *testing.T, gen image.Generator) http.Handler {
	t.Helper()
	logger := zerolog.Nop()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	hist := history.NewStore(context.Background(), &memoryRepo{}, logger)
	orch := orchestrator.New(gen, hist, logger)
	app := handlers.NewApp(scene.New(), orch, hist, prompt.NewStaticEnhancer(), store, logger)
	return httpapi.NewRouter(app, httpapi.RouterOptions{Logger: logger, DefaultLocale: "en"})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

type sceneBody struct {
	Text           string `json:"text"`
	AspectRatio    string `json:"aspectRatio"`
	NumberOfImages int    `json:"numberOfImages"`
	Characters     []struct {
		ID    int64             `json:"id"`
		Name  string            `json:"name"`
		Image *imagedata.Record `json:"image"`
	} `json:"characters"`
	Objects []struct {
		ID    int64             `json:"id"`
		Name  string            `json:"name"`
		Image *imagedata.Record `json:"image"`
	} `json:"objects"`
	BaseImage *imagedata.Record `json:"baseImage"`
	Prompt    string            `json:"prompt"`
}

func dataURL(payload, mediaType string) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestSceneUpdateClampsValues(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})

	rec := doJSON(t, h, http.MethodPut, "/v1/scene", map[string]any{
		"text":           "a ruined abbey",
		"numberOfImages": 99,
		"aspectRatio":    "5:7",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	view := decodeBody[sceneBody](t, rec)
	if view.NumberOfImages != scene.MaxImages {
		t.Fatalf("NumberOfImages = %d, want clamped to %d", view.NumberOfImages, scene.MaxImages)
	}
	if view.AspectRatio != scene.DefaultAspectRatio {
		t.Fatalf("AspectRatio = %q, want default", view.AspectRatio)
	}
	if !strings.Contains(view.Prompt, "a ruined abbey") {
		t.Fatalf("prompt preview = %q", view.Prompt)
	}
}

func TestCharacterLifecycle(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})

	rec := doJSON(t, h, http.MethodPost, "/v1/scene/characters", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}
	view := decodeBody[sceneBody](t, rec)
	if len(view.Characters) != 1 || view.Characters[0].Name != "Character 1" {
		t.Fatalf("characters = %+v", view.Characters)
	}
	id := view.Characters[0].ID

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/v1/scene/characters/%d/image", id), map[string]string{
		"image":    dataURL("pixels", "image/png"),
		"fileName": "storm_witch.png",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("attach status = %d: %s", rec.Code, rec.Body.String())
	}
	view = decodeBody[sceneBody](t, rec)
	if view.Characters[0].Name != "storm witch" || view.Characters[0].Image == nil {
		t.Fatalf("after attach = %+v", view.Characters[0])
	}

	// A malformed data URL clears the image but keeps the element usable.
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/v1/scene/characters/%d/image", id), map[string]string{
		"image": "not-a-data-url",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("attach malformed status = %d", rec.Code)
	}
	view = decodeBody[sceneBody](t, rec)
	if view.Characters[0].Image != nil {
		t.Fatal("malformed upload left an image attached")
	}
	if view.Characters[0].Name != "storm witch" {
		t.Fatalf("name = %q, want preserved", view.Characters[0].Name)
	}

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/v1/scene/characters/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	view = decodeBody[sceneBody](t, rec)
	if len(view.Characters) != 0 {
		t.Fatalf("characters = %+v, want empty", view.Characters)
	}
}

func TestReorderEndpoint(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})
	for i := 0; i < 3; i++ {
		doJSON(t, h, http.MethodPost, "/v1/scene/objects", nil)
	}

	rec := doJSON(t, h, http.MethodPost, "/v1/scene/objects/reorder", map[string]int{"from": 0, "to": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder status = %d", rec.Code)
	}
	view := decodeBody[sceneBody](t, rec)
	want := []string{"Object 2", "Object 3", "Object 1"}
	for i, o := range view.Objects {
		if o.Name != want[i] {
			t.Fatalf("order = %+v, want %v", view.Objects, want)
		}
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/scene/objects/reorder", map[string]int{"from": 9, "to": 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid reorder status = %d, want 400", rec.Code)
	}
}

func TestBulkAddObjects(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	addPart := func(name, contentType, payload string) {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte(payload)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	addPart("iron_lantern.png", "image/png", "aaa")
	addPart("notes.txt", "text/plain", "skip me")
	addPart("oak-chest.jpg", "image/jpeg", "bbb")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/scene/objects/bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("bulk status = %d: %s", rec.Code, rec.Body.String())
	}
	view := decodeBody[sceneBody](t, rec)
	if len(view.Objects) != 2 {
		t.Fatalf("objects = %+v, want 2", view.Objects)
	}
	names := map[string]bool{}
	for _, o := range view.Objects {
		if o.Image == nil {
			t.Fatalf("object %q has no image", o.Name)
		}
		names[o.Name] = true
	}
	if !names["iron lantern"] || !names["oak chest"] {
		t.Fatalf("names = %v", names)
	}
}

type generateBody struct {
	Images []imagedata.Record `json:"images"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestGenerateEndpoint(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})

	// An empty scene cannot start a run.
	rec := doJSON(t, h, http.MethodPost, "/v1/generate", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty scene status = %d, want 422", rec.Code)
	}

	doJSON(t, h, http.MethodPut, "/v1/scene", map[string]any{"text": "desert caravan", "numberOfImages": 2})
	rec = doJSON(t, h, http.MethodPost, "/v1/generate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[generateBody](t, rec)
	if len(body.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(body.Images))
	}

	histRec := doJSON(t, h, http.MethodGet, "/v1/history", nil)
	hist := decodeBody[map[string][]history.Entry](t, histRec)
	if len(hist["entries"]) != 2 {
		t.Fatalf("history entries = %d, want 2", len(hist["entries"]))
	}
	if hist["entries"][0].Kind != history.KindGenerate {
		t.Fatalf("entry kind = %q", hist["entries"][0].Kind)
	}
}

func TestGenerateReturnsPartialResultsOnFailure(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{failOn: 2})

	doJSON(t, h, http.MethodPut, "/v1/scene", map[string]any{"text": "desert caravan", "numberOfImages": 3})
	rec := doJSON(t, h, http.MethodPost, "/v1/generate", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := decodeBody[generateBody](t, rec)
	if len(body.Images) != 1 {
		t.Fatalf("partial images = %d, want 1", len(body.Images))
	}
	if body.Error == nil || !strings.Contains(body.Error.Message, "upstream rejected the request") {
		t.Fatalf("error = %+v, want provider message", body.Error)
	}
}

func TestEditEndpoint(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})

	// No base image yet.
	rec := doJSON(t, h, http.MethodPost, "/v1/edit", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("edit without base status = %d, want 422", rec.Code)
	}

	doJSON(t, h, http.MethodPut, "/v1/scene/base-image", map[string]string{"image": dataURL("base", "image/png")})
	doJSON(t, h, http.MethodPut, "/v1/scene", map[string]any{"editText": "warmer colors"})

	rec = doJSON(t, h, http.MethodPost, "/v1/edit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[generateBody](t, rec)
	if len(body.Images) != 1 {
		t.Fatalf("images = %d, want 1", len(body.Images))
	}

	// The edit result becomes the new base image.
	sceneRec := doJSON(t, h, http.MethodGet, "/v1/scene", nil)
	view := decodeBody[sceneBody](t, sceneRec)
	if view.BaseImage == nil || view.BaseImage.Data != body.Images[0].Data {
		t.Fatal("base image not replaced by edit result")
	}

	histRec := doJSON(t, h, http.MethodGet, "/v1/history", nil)
	hist := decodeBody[map[string][]history.Entry](t, histRec)
	if len(hist["entries"]) != 1 || hist["entries"][0].Kind != history.KindEdit {
		t.Fatalf("history = %+v, want one edit entry", hist["entries"])
	}
}

func TestHistoryDownloadAndClear(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})
	doJSON(t, h, http.MethodPut, "/v1/scene", map[string]any{"text": "harbor at dawn"})
	doJSON(t, h, http.MethodPost, "/v1/generate", nil)

	histRec := doJSON(t, h, http.MethodGet, "/v1/history", nil)
	hist := decodeBody[map[string][]history.Entry](t, histRec)
	if len(hist["entries"]) != 1 {
		t.Fatalf("history entries = %d, want 1", len(hist["entries"]))
	}
	id := hist["entries"][0].ID

	rec := doJSON(t, h, http.MethodGet, "/v1/history/"+id+"/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("Content-Type = %q", got)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, id+".png") {
		t.Fatalf("Content-Disposition = %q, want filename %s.png", disposition, id)
	}
	if rec.Body.String() != "image-1" {
		t.Fatalf("download body = %q", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/history/archive", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("archive status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = doJSON(t, h, http.MethodDelete, "/v1/history/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	histRec = doJSON(t, h, http.MethodGet, "/v1/history", nil)
	hist = decodeBody[map[string][]history.Entry](t, histRec)
	if len(hist["entries"]) != 0 {
		t.Fatalf("history after delete = %+v", hist["entries"])
	}

	// Archive of an empty history is a 404.
	rec = doJSON(t, h, http.MethodGet, "/v1/history/archive", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty archive status = %d, want 404", rec.Code)
	}
}

func TestPromptEnhanceEndpoint(t *testing.T) {
	h := newTestServer(t, &scriptedGenerator{})

	rec := doJSON(t, h, http.MethodPost, "/v1/prompts/enhance", map[string]string{"text": " "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank text status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/prompts/enhance", map[string]string{"text": "a castle"})
	if rec.Code != http.StatusOK {
		t.Fatalf("enhance status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if !strings.Contains(body["text"], "a castle") {
		t.Fatalf("enhanced text = %q", body["text"])
	}
}
