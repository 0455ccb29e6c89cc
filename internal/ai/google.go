package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-2.5-flash"
)

// GoogleProvider talks to the Google Gemini generateContent API.
type GoogleProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// GoogleOption configures a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithGoogleBaseURL overrides the endpoint (for testing).
func WithGoogleBaseURL(url string) GoogleOption {
	return func(p *GoogleProvider) { p.baseURL = url }
}

// WithGoogleModel sets the default model.
func WithGoogleModel(model string) GoogleOption {
	return func(p *GoogleProvider) { p.model = model }
}

// WithGoogleHTTPClient sets a custom HTTP client.
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(p *GoogleProvider) { p.client = client }
}

// NewGoogleProvider creates a Gemini provider.
func NewGoogleProvider(apiKey string, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		apiKey:  apiKey,
		baseURL: geminiDefaultBaseURL,
		model:   geminiDefaultModel,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type geminiBody struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type geminiReply struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *GoogleProvider) Complete(ctx context.Context, req DraftRequest) (DraftResponse, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	// Gemini has no system role; prepend the instruction to the user turn.
	text := req.Prompt
	if req.System != "" {
		text = req.System + "\n\n" + text
	}

	body := geminiBody{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
	}
	if req.MaxTokens > 0 || req.Temperature > 0 || req.ForceJSON {
		config := &geminiConfig{MaxOutputTokens: req.MaxTokens}
		if req.Temperature > 0 {
			temp := req.Temperature
			config.Temperature = &temp
		}
		if req.ForceJSON {
			config.ResponseMimeType = "application/json"
		}
		body.GenerationConfig = config
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return DraftResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return DraftResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return DraftResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return DraftResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return DraftResponse{}, fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode, raw)
	}

	var reply geminiReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return DraftResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return DraftResponse{}, fmt.Errorf("no candidates in response")
	}

	// Long answers can come back split over several parts.
	var sb strings.Builder
	for _, part := range reply.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return DraftResponse{
		Text:         sb.String(),
		Model:        model,
		PromptTokens: reply.UsageMetadata.PromptTokenCount,
		AnswerTokens: reply.UsageMetadata.CandidatesTokenCount,
	}, nil
}
