package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"scenestudio/internal/history"
	"scenestudio/internal/http/handlers"
	httpapi "scenestudio/internal/http/httpapi"
	"scenestudio/internal/infra"
	"scenestudio/internal/infra/geoip"
	"scenestudio/internal/middleware"
	"scenestudio/internal/orchestrator"
	"scenestudio/internal/providers/genai"
	"scenestudio/internal/providers/image"
	"scenestudio/internal/providers/prompt"
	"scenestudio/internal/scene"
	"scenestudio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}

	// History persists to Postgres when a database is configured, otherwise
	// to a JSON file next to the other local data.
	var repo history.Repository = history.NewFileRepository(fileStore)
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		runner := infra.NewSQLRunner(pool, logger)
		pgRepo, err := history.NewPostgresRepository(ctx, runner)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare history table")
		}
		repo = pgRepo
	}
	hist := history.NewStore(ctx, repo, logger)

	genaiClient, err := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiImageModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}
	generator := image.NewGeminiGenerator(genaiClient)

	sceneState := scene.New()
	orch := orchestrator.New(generator, hist, logger)
	enhancer := buildEnhancer(cfg, logger)

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(sceneState, orch, hist, enhancer, fileStore, logger)

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// buildEnhancer picks the prompt enhancer by configuration. Any misconfigured
// provider degrades to the static enhancer so the endpoint keeps working.
func buildEnhancer(cfg *infra.Config, logger infra.Logger) prompt.Enhancer {
	static := prompt.NewStaticEnhancer()

	switch strings.ToLower(cfg.PromptProvider) {
	case "openai":
		enhancer, err := prompt.NewOpenAIEnhancer(prompt.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			Fallback:     static,
			OnFallback: func(reason string, err error) {
				logger.Warn().Err(err).Str("reason", reason).Msg("openai enhancer fell back")
			},
		})
		if err != nil {
			logger.Warn().Err(err).Msg("openai enhancer unavailable, using static")
			return static
		}
		return enhancer
	case "gemini":
		enhancer, err := prompt.NewGeminiEnhancer(prompt.GeminiOptions{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			BaseURL:  cfg.GeminiBaseURL,
			Fallback: static,
			OnFallback: func(reason string, err error) {
				logger.Warn().Err(err).Str("reason", reason).Msg("gemini enhancer fell back")
			},
		})
		if err != nil {
			logger.Warn().Err(err).Msg("gemini enhancer unavailable, using static")
			return static
		}
		return enhancer
	default:
		return static
	}
}
