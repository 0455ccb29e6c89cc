// Package quiz implements the question bank: sampling for students, full-bank
// curation for admins, draft merging, and scoring. Question identity for
// dedup purposes is the question text itself.
package quiz

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DefaultSampleSize is how many questions a student draw returns.
const DefaultSampleSize = 5

// Question is one multiple-choice question. Options always has exactly four
// entries; CorrectIndex is 0-based. Inline math spans in the text pass
// through as opaque strings.
type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Validate checks the structural constraints on a single question.
func (q Question) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("question has %d options, want 4", len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("correctIndex %d out of range", q.CorrectIndex)
	}
	return nil
}

// Sample returns min(k, len(bank)) questions without mutating bank. A bank
// no larger than k comes back as a copy in its original order; a larger bank
// is uniformly shuffled and truncated. Call again for a fresh draw.
func Sample(bank []Question, k int) []Question {
	if k <= 0 {
		k = DefaultSampleSize
	}
	out := make([]Question, len(bank))
	copy(out, bank)
	if len(out) <= k {
		return out
	}
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out[:k]
}

// MergeDraft appends every draft question whose text does not exactly match
// an existing question's text. Existing questions keep their order and are
// never mutated; this is the only path by which a generated draft grows the
// bank.
func MergeDraft(existing, draft []Question) []Question {
	seen := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		seen[q.Question] = struct{}{}
	}

	out := make([]Question, len(existing), len(existing)+len(draft))
	copy(out, existing)
	for _, q := range draft {
		if _, dup := seen[q.Question]; dup {
			continue
		}
		seen[q.Question] = struct{}{}
		out = append(out, q)
	}
	return out
}

// UpsertOne replaces the question at index, or appends when index is -1.
// The caller persists the returned slice as the entire new bank.
func UpsertOne(bank []Question, index int, q Question) ([]Question, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	out := make([]Question, len(bank))
	copy(out, bank)
	if index == -1 {
		return append(out, q), nil
	}
	if index < 0 || index >= len(out) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", index, len(out))
	}
	out[index] = q
	return out, nil
}

// DeleteOne removes the question at index, shifting later entries down.
// Indices held before the call are stale after it.
func DeleteOne(bank []Question, index int) ([]Question, error) {
	if index < 0 || index >= len(bank) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", index, len(bank))
	}
	out := make([]Question, 0, len(bank)-1)
	out = append(out, bank[:index]...)
	out = append(out, bank[index+1:]...)
	return out, nil
}

// Unanswered marks a position in an answer vector with no selection yet.
const Unanswered = -1

// Score counts positions where the answer matches the question's correct
// index. Unanswered never matches.
func Score(subset []Question, answers []int) int {
	score := 0
	for i, q := range subset {
		if i >= len(answers) {
			break
		}
		if answers[i] != Unanswered && answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}

// Passed reports whether the score clears the 80% celebration threshold.
func Passed(score, total int) bool {
	if total == 0 {
		return false
	}
	return score >= int(math.Ceil(0.8*float64(total)))
}
