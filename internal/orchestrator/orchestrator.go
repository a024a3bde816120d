// Package orchestrator runs generation and edit requests against the image
// provider, one call at a time, and records every finished result in history.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scenestudio/internal/domain"
	"scenestudio/internal/history"
	"scenestudio/internal/imagedata"
	"scenestudio/internal/providers/image"
	"scenestudio/internal/scene"
)

// Orchestrator serializes generation work: at most one request runs at any
// moment, and results reach history as each provider call finishes.
type Orchestrator struct {
	generator image.Generator
	history   *history.Store
	logger    zerolog.Logger

	mu      sync.Mutex
	running bool
}

func New(generator image.Generator, hist *history.Store, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{generator: generator, history: hist, logger: logger}
}

// Running reports whether a request is currently in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return domain.ErrRequestRunning
	}
	o.running = true
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

// Generate runs s.NumberOfImages sequential provider calls for the scene.
// Each finished image is recorded in history and handed to onResult before
// the next call starts, so a mid-run failure still leaves the completed
// images behind. The partial results are returned alongside the error.
func (o *Orchestrator) Generate(ctx context.Context, s *scene.Scene, onResult func(imagedata.Record)) ([]imagedata.Record, error) {
	if !s.ReadyForGenerate() {
		return nil, fmt.Errorf("%w: add scene text, an imaged character or object, or a location image", domain.ErrSceneIncomplete)
	}
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	s.Normalize()
	prompt := scene.BuildPrompt(s)
	requestID := uuid.NewString()
	refs := s.ReferenceImages()

	o.logger.Info().
		Str("request_id", requestID).
		Int("count", s.NumberOfImages).
		Msg("generation started")

	var results []imagedata.Record
	for i := 0; i < s.NumberOfImages; i++ {
		rec, err := o.generator.Generate(ctx, image.GenerateRequest{
			Prompt:      prompt,
			AspectRatio: s.AspectRatio,
			References:  refs,
			Style:       s.Style,
			RequestID:   fmt.Sprintf("%s-%d", requestID, i+1),
		})
		if err != nil {
			o.logger.Error().
				Err(err).
				Str("request_id", requestID).
				Int("completed", len(results)).
				Msg("generation failed")
			return results, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
		}

		o.history.Add(ctx, rec, prompt, history.KindGenerate)
		results = append(results, rec)
		if onResult != nil {
			onResult(rec)
		}
	}

	o.logger.Info().
		Str("request_id", requestID).
		Int("count", len(results)).
		Msg("generation finished")

	return results, nil
}

// Edit runs a single provider call against the scene's base image and
// replaces it with the result on success.
func (o *Orchestrator) Edit(ctx context.Context, s *scene.Scene) (imagedata.Record, error) {
	if !s.ReadyForEdit() {
		return imagedata.Record{}, fmt.Errorf("%w: an edit needs a base image and instruction text", domain.ErrSceneIncomplete)
	}
	if err := o.begin(); err != nil {
		return imagedata.Record{}, err
	}
	defer o.end()

	instruction := scene.BuildEditInstruction(s)
	requestID := uuid.NewString()

	o.logger.Info().
		Str("request_id", requestID).
		Msg("edit started")

	rec, err := o.generator.Generate(ctx, image.GenerateRequest{
		Prompt:      instruction,
		AspectRatio: s.AspectRatio,
		References:  s.ReferenceImages(),
		Style:       s.Style,
		Base:        s.Base,
		RequestID:   requestID,
	})
	if err != nil {
		o.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("edit failed")
		return imagedata.Record{}, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	o.history.Add(ctx, rec, instruction, history.KindEdit)
	s.Base = &rec

	o.logger.Info().
		Str("request_id", requestID).
		Msg("edit finished")

	return rec, nil
}
