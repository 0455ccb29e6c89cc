package ai

import "context"

// Mock is a Provider test double. It records every request and answers
// with Text, or fails with Err when set.
type Mock struct {
	Text     string
	Err      error
	Requests []DraftRequest
}

// NewMock creates a Mock answering with text.
func NewMock(text string) *Mock {
	return &Mock{Text: text}
}

func (m *Mock) Complete(_ context.Context, req DraftRequest) (DraftResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return DraftResponse{}, m.Err
	}
	return DraftResponse{
		Text:         m.Text,
		Model:        "mock",
		PromptTokens: 10,
		AnswerTokens: len(m.Text),
	}, nil
}
