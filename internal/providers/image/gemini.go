// Package image defines the generation contract the session orchestrator
// depends on and its Gemini-backed implementation.
package image

import (
	"context"

	"scenestudio/internal/imagedata"
	"scenestudio/internal/providers/genai"
)

// GenerateRequest is one image call: the assembled prompt plus the reference,
// style, and base images that steer the model. Base is set for edits only.
type GenerateRequest struct {
	Prompt      string
	AspectRatio string
	References  []imagedata.Record
	Style       *imagedata.Record
	Base        *imagedata.Record
	RequestID   string
}

// Generator produces a single image per call.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (imagedata.Record, error)
}

// GeminiGenerator adapts the Gemini client to the Generator contract.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (imagedata.Record, error) {
	return g.client.GenerateImage(ctx, genai.ImageRequest{
		Prompt:      req.Prompt,
		References:  req.References,
		Style:       req.Style,
		Base:        req.Base,
		AspectRatio: req.AspectRatio,
		RequestID:   req.RequestID,
	})
}

var _ Generator = (*GeminiGenerator)(nil)
