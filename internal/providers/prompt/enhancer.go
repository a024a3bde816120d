// Package prompt enriches user-written scene descriptions before generation.
// A language-model enhancer is used when configured; a deterministic static
// enhancer serves as the terminal fallback.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type EnhanceRequest struct {
	Text   string
	Locale string
}

type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (string, error)
}

const (
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
	staticProviderName = "static"
)

// StaticEnhancer rewrites the text with a fixed cinematic template. It needs
// no credentials and always succeeds on non-blank input.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", errors.New("prompt text is required")
	}
	text = strings.TrimRight(text, ".")
	return fmt.Sprintf("A richly detailed, cinematic depiction of %s. Strong sense of atmosphere, carefully balanced composition, and natural depth of field.", text), nil
}

var _ Enhancer = (*StaticEnhancer)(nil)
