package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lop-hoc/lophoc-server/internal/ai"
)

func validDraftJSON() string {
	items := []string{}
	for _, q := range []string{
		"Số nguyên tố là gì?",
		"Phân số tối giản là gì?",
		"Rút gọn 4/8 được phân số nào?",
		"Tổng 1/2 + 1/3 bằng bao nhiêu?",
		"Tìm x biết $x/2 = 3/6$",
	} {
		items = append(items, `{
			"question": "`+q+`",
			"options": ["A", "B", "C", "D"],
			"correctIndex": 1,
			"explanation": "Giải thích."
		}`)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestGenerator_Generate(t *testing.T) {
	mock := ai.NewMock(validDraftJSON())
	gen := New(mock)

	draft, err := gen.Generate(context.Background(), "Bài 1: Phân số")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(draft) != 5 {
		t.Fatalf("len(draft) = %d, want 5", len(draft))
	}
	if draft[2].CorrectIndex != 1 {
		t.Errorf("CorrectIndex = %d, want 1", draft[2].CorrectIndex)
	}

	if len(mock.Requests) != 1 {
		t.Fatalf("provider saw %d requests, want 1", len(mock.Requests))
	}
	req := mock.Requests[0]
	if !req.ForceJSON {
		t.Error("ForceJSON = false, want true")
	}
	if !strings.Contains(req.Prompt, "Bài 1: Phân số") {
		t.Error("prompt does not mention the lesson title")
	}
}

func TestGenerator_GenerateFencedResponse(t *testing.T) {
	mock := ai.NewMock("```json\n" + validDraftJSON() + "\n```")
	gen := New(mock)

	draft, err := gen.Generate(context.Background(), "Bài 1")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(draft) != 5 {
		t.Errorf("len(draft) = %d, want 5", len(draft))
	}
}

func TestGenerator_GenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		err       error
		wantStage string
	}{
		{
			name:      "ProviderError",
			err:       errors.New("all AI providers failed"),
			wantStage: "complete",
		},
		{
			name:      "NotJSON",
			response:  "Here are your questions: 1. ...",
			wantStage: "schema",
		},
		{
			name:      "WrongCount",
			response:  `[{"question":"q","options":["a","b","c","d"],"correctIndex":0,"explanation":"e"}]`,
			wantStage: "schema",
		},
		{
			name:      "IndexOutOfRange",
			response:  strings.ReplaceAll(validDraftJSON(), `"correctIndex": 1`, `"correctIndex": 7`),
			wantStage: "schema",
		},
		{
			name:      "ExtraKey",
			response:  strings.ReplaceAll(validDraftJSON(), `"explanation":`, `"hint": "x", "explanation":`),
			wantStage: "schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := ai.NewMock(tt.response)
			mock.Err = tt.err
			gen := New(mock)

			_, err := gen.Generate(context.Background(), "Bài 1")
			if err == nil {
				t.Fatal("Generate() error = nil, want error")
			}
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("error type = %T, want *GenerationError", err)
			}
			if genErr.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", genErr.Stage, tt.wantStage)
			}
		})
	}
}
