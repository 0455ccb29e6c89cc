// Package quizgen produces quiz question drafts from lesson titles via
// an AI completion, schema-validated before they reach a question bank.
package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lop-hoc/lophoc-server/internal/ai"
	"github.com/lop-hoc/lophoc-server/internal/quiz"
)

const systemPrompt = `You are an assistant that writes multiple-choice quiz questions for Vietnamese secondary-school students. Answer in Vietnamese. Respond with a JSON array only, no surrounding prose.`

const userPromptTemplate = `Write exactly 5 multiple-choice questions for the lesson titled %q.

Difficulty mix:
- 2 questions testing recall of definitions or facts from the lesson
- 2 questions applying the lesson to a concrete exercise
- 1 harder question combining ideas from the lesson

Each question has exactly 4 options and one correct answer. Use $...$ for
inline math if needed. Respond with a JSON array of objects with keys
"question", "options", "correctIndex" (0-based), "explanation".`

// GenerationError wraps any failure along the generate pipeline. Callers
// can surface it and retry; an existing bank is never touched on failure.
type GenerationError struct {
	Stage string // "complete", "schema", "decode", "validate"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate quiz draft (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Completer is the subset of the AI router the generator needs.
type Completer interface {
	Complete(ctx context.Context, req ai.DraftRequest) (ai.DraftResponse, error)
}

// Generator turns lesson titles into validated question drafts.
type Generator struct {
	ai     Completer
	schema *gojsonschema.Schema
}

// New creates a Generator. It panics if the embedded schema is invalid,
// which only happens on a programming error.
func New(completer Completer) *Generator {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(draftSchema))
	if err != nil {
		panic(fmt.Sprintf("quizgen: compile draft schema: %v", err))
	}
	return &Generator{ai: completer, schema: schema}
}

// Generate asks the AI for a 5-question draft about lessonTitle and
// validates it. The returned draft is not persisted anywhere.
func (g *Generator) Generate(ctx context.Context, lessonTitle string) ([]quiz.Question, error) {
	resp, err := g.ai.Complete(ctx, ai.DraftRequest{
		System:      systemPrompt,
		Prompt:      fmt.Sprintf(userPromptTemplate, lessonTitle),
		Temperature: 0.7,
		ForceJSON:   true,
	})
	if err != nil {
		return nil, &GenerationError{Stage: "complete", Err: err}
	}

	raw := stripFences(resp.Text)

	result, err := g.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &GenerationError{Stage: "schema", Err: err}
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, &GenerationError{Stage: "schema", Err: fmt.Errorf("draft does not match schema: %s", strings.Join(msgs, "; "))}
	}

	var draft []quiz.Question
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, &GenerationError{Stage: "decode", Err: err}
	}

	for i, q := range draft {
		if err := q.Validate(); err != nil {
			return nil, &GenerationError{Stage: "validate", Err: fmt.Errorf("question %d: %w", i, err)}
		}
	}

	return draft, nil
}

// stripFences removes a markdown code fence some models wrap JSON in
// despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
