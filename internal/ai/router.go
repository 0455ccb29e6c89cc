package ai

import (
	"context"
	"fmt"
	"log/slog"
)

type namedProvider struct {
	name     string
	provider Provider
}

// Router tries providers in registration order until one answers.
// Registration happens once at startup; Complete may run concurrently.
type Router struct {
	chain []namedProvider
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Register appends a provider to the fallback chain.
func (r *Router) Register(name string, provider Provider) {
	r.chain = append(r.chain, namedProvider{name: name, provider: provider})
}

// HasProvider reports whether any provider is registered.
func (r *Router) HasProvider() bool {
	return len(r.chain) > 0
}

// Complete returns the first successful answer along the chain.
func (r *Router) Complete(ctx context.Context, req DraftRequest) (DraftResponse, error) {
	for _, np := range r.chain {
		resp, err := np.provider.Complete(ctx, req)
		if err != nil {
			slog.Warn("draft provider failed, trying next", "provider", np.name, "error", err)
			continue
		}
		slog.Debug("draft completed",
			"provider", np.name,
			"model", resp.Model,
			"prompt_tokens", resp.PromptTokens,
			"answer_tokens", resp.AnswerTokens,
		)
		return resp, nil
	}
	return DraftResponse{}, fmt.Errorf("all draft providers failed")
}
