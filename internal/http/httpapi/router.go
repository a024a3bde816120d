package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"scenestudio/internal/http/handlers"
	"scenestudio/internal/infra"
	"scenestudio/internal/middleware"
)

type RouterOptions struct {
	Logger         infra.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/scene", func(r chi.Router) {
		r.Get("/", app.GetScene)
		r.Put("/", app.UpdateScene)

		r.Put("/location-image", app.SetSlotImage(handlers.SlotLocation))
		r.Delete("/location-image", app.ClearSlotImage(handlers.SlotLocation))
		r.Put("/style-image", app.SetSlotImage(handlers.SlotStyle))
		r.Delete("/style-image", app.ClearSlotImage(handlers.SlotStyle))
		r.Put("/base-image", app.SetSlotImage(handlers.SlotBase))
		r.Delete("/base-image", app.ClearSlotImage(handlers.SlotBase))

		r.Post("/objects/bulk", app.BulkAddObjects)

		r.Route("/{list:characters|objects}", func(r chi.Router) {
			r.Post("/", app.AddListElement)
			r.Post("/reorder", app.ReorderList)
			r.Delete("/{id}", app.RemoveListElement)
			r.Put("/{id}/image", app.AttachListImage)
			r.Delete("/{id}/image", app.ClearListImage)
		})
	})

	r.Post("/v1/generate", app.Generate)
	r.Post("/v1/edit", app.Edit)
	r.Post("/v1/prompts/enhance", app.PromptEnhance)

	r.Route("/v1/history", func(r chi.Router) {
		r.Get("/", app.ListHistory)
		r.Delete("/", app.ClearHistory)
		r.Get("/archive", app.ArchiveHistory)
		r.Get("/{id}/download", app.DownloadHistoryEntry)
		r.Delete("/{id}", app.DeleteHistoryEntry)
	})

	return r
}
