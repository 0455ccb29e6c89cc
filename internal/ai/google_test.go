package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiStub(t *testing.T, capture *geminiBody) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("path = %q, want generateContent call", r.URL.Path)
		}
		if key := r.URL.Query().Get("key"); key != "test-key" {
			t.Errorf("key = %q", key)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "["}, {"text": "]"}]}}],
			"usageMetadata": {"promptTokenCount": 9, "candidatesTokenCount": 2}
		}`))
	}))
}

func TestGoogleComplete(t *testing.T) {
	var got geminiBody
	server := geminiStub(t, &got)
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
	resp, err := provider.Complete(context.Background(), DraftRequest{
		System:    "Write quizzes.",
		Prompt:    "5 questions about fractions",
		ForceJSON: true,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	// Multi-part answers are concatenated.
	if resp.Text != "[]" {
		t.Errorf("Text = %q, want []", resp.Text)
	}
	if resp.PromptTokens != 9 || resp.AnswerTokens != 2 {
		t.Errorf("usage = %d/%d, want 9/2", resp.PromptTokens, resp.AnswerTokens)
	}

	// The system instruction is folded into the single user turn.
	if len(got.Contents) != 1 || got.Contents[0].Role != "user" {
		t.Fatalf("contents = %+v, want one user turn", got.Contents)
	}
	text := got.Contents[0].Parts[0].Text
	if !strings.HasPrefix(text, "Write quizzes.") || !strings.Contains(text, "fractions") {
		t.Errorf("folded prompt = %q", text)
	}
	if got.GenerationConfig == nil || got.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("generationConfig = %+v, want application/json mime", got.GenerationConfig)
	}
}

func TestGoogleCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota"}`, http.StatusForbidden)
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
	if _, err := provider.Complete(context.Background(), DraftRequest{Prompt: "hi"}); err == nil {
		t.Fatal("Complete() error = nil, want error")
	}
}

func TestGoogleCompleteNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
	if _, err := provider.Complete(context.Background(), DraftRequest{Prompt: "hi"}); err == nil {
		t.Fatal("Complete() error = nil, want error for empty candidates")
	}
}
