// Package ai calls generative text APIs to draft quiz questions. Every
// call is a single-shot completion: one system instruction, one prompt,
// one text answer. Providers share the Provider interface and are tried
// in order by the Router.
package ai

import "context"

// DraftRequest is one completion call.
type DraftRequest struct {
	// System sets the assistant's standing instruction. Providers that
	// have no system role fold it into the prompt.
	System string
	// Prompt is the user-turn text.
	Prompt string
	// Model overrides the provider's default model when non-empty.
	Model string
	// MaxTokens caps the answer length; 0 means provider default.
	MaxTokens int
	// Temperature above 0 is passed through to the provider.
	Temperature float64
	// ForceJSON asks the provider to constrain output to a single JSON
	// document. Providers that cannot are still expected to follow the
	// prompt; callers validate the payload either way.
	ForceJSON bool
}

// DraftResponse is the provider's answer plus usage accounting.
type DraftResponse struct {
	Text         string
	Model        string
	PromptTokens int
	AnswerTokens int
}

// Provider produces one completion per call.
type Provider interface {
	Complete(ctx context.Context, req DraftRequest) (DraftResponse, error)
}
