package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Fallback     Enhancer
	OnFallback   func(reason string, err error)
}

type OpenAIEnhancer struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
	fallback     Enhancer
	onFallback   func(reason string, err error)
}

const openAIDefaultTimeout = 15 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIEnhancer(opts OpenAIOptions) (*OpenAIEnhancer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIEnhancer{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
		fallback:     opts.Fallback,
		onFallback:   opts.OnFallback,
	}, nil
}

func (o *OpenAIEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", errors.New("prompt text is required")
	}
	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: 0.6,
		ResponseFormat: &openAIFormat{
			Type: "json_object",
		},
		Messages: []openAIMessage{
			{Role: "system", Content: "You are an expert prompt writer for image generation models. Respond only with valid JSON."},
			{Role: "user", Content: buildOpenAIEnhancePrompt(req)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return o.useFallback(ctx, req, "encode_request", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return o.useFallback(ctx, req, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return o.useFallback(ctx, req, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return o.useFallback(ctx, req, fmt.Sprintf("http_%d", resp.StatusCode), fmt.Errorf("openai status %d", resp.StatusCode))
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return o.useFallback(ctx, req, "decode_response", err)
	}
	if len(out.Choices) == 0 {
		return o.useFallback(ctx, req, "empty_choices", errors.New("no choices"))
	}
	raw := strings.TrimSpace(out.Choices[0].Message.Content)
	if raw == "" {
		return o.useFallback(ctx, req, "empty_response", errors.New("empty response"))
	}
	parsed, err := parseModelPayload[enhancePayload](raw)
	if err != nil || strings.TrimSpace(parsed.Text) == "" {
		return o.useFallback(ctx, req, "parse_payload", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}

func buildOpenAIEnhancePrompt(req EnhanceRequest) string {
	locale := req.Locale
	if locale == "" {
		locale = "en"
	}
	sb := &strings.Builder{}
	sb.WriteString("Rewrite the scene description below into a vivid, concrete image-generation prompt: add specific visual detail about subjects, setting, lighting, and mood while preserving the author's intent. Respond as JSON: ")
	sb.WriteString(`{"text":string}`)
	fmt.Fprintf(sb, ". Write the prompt in the language of locale '%s'. Scene description: %q.", locale, req.Text)
	return sb.String()
}

func (o *OpenAIEnhancer) useFallback(ctx context.Context, req EnhanceRequest, reason string, fallbackErr error) (string, error) {
	if o.onFallback != nil {
		o.onFallback(reason, fallbackErr)
	}
	if o.fallback != nil {
		return o.fallback.Enhance(ctx, req)
	}
	return NewStaticEnhancer().Enhance(ctx, req)
}

var _ Enhancer = (*OpenAIEnhancer)(nil)
