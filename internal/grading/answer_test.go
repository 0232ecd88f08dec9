package grading

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/examhall/examhall-backend/internal/model"
)

func TestParseAnswerMCQArray(t *testing.T) {
	a, err := ParseAnswer(model.ExamTypeMCQ, json.RawMessage(`[0, 2, 1]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mcq, ok := a.(MCQAnswer)
	if !ok {
		t.Fatalf("expected MCQAnswer, got %T", a)
	}
	want := []int{0, 2, 1}
	if len(mcq.Selections) != len(want) {
		t.Fatalf("got %v, want %v", mcq.Selections, want)
	}
	for i := range want {
		if mcq.Selections[i] != want[i] {
			t.Errorf("selection %d: got %d, want %d", i, mcq.Selections[i], want[i])
		}
	}
}

func TestParseAnswerMCQMapSortsNumerically(t *testing.T) {
	// Keys 0..10: lexical sort would put "10" after "1", numeric sort
	// must put it last.
	raw := json.RawMessage(`{"0":0,"1":1,"2":2,"10":9,"9":8}`)
	a, err := ParseAnswer(model.ExamTypeMCQ, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mcq := a.(MCQAnswer)
	want := []int{0, 1, 2, 8, 9}
	for i := range want {
		if mcq.Selections[i] != want[i] {
			t.Fatalf("got %v, want %v", mcq.Selections, want)
		}
	}
}

func TestParseAnswerMCQCoercion(t *testing.T) {
	raw := json.RawMessage(`["1", 2, null, "abc", true]`)
	a, err := ParseAnswer(model.ExamTypeMCQ, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mcq := a.(MCQAnswer)
	want := []int{1, 2, -1, -1, -1}
	for i := range want {
		if mcq.Selections[i] != want[i] {
			t.Fatalf("got %v, want %v", mcq.Selections, want)
		}
	}
}

func TestParseAnswerMCQFractionalNeverMatches(t *testing.T) {
	raw := json.RawMessage(`[1.5, 2, "0.25", -0.5]`)
	a, err := ParseAnswer(model.ExamTypeMCQ, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mcq := a.(MCQAnswer)
	want := []int{-1, 2, -1, -1}
	for i := range want {
		if mcq.Selections[i] != want[i] {
			t.Fatalf("got %v, want %v", mcq.Selections, want)
		}
	}
}

func TestParseAnswerTheoryNilBecomesEmpty(t *testing.T) {
	raw := json.RawMessage(`["an essay", null, 42]`)
	a, err := ParseAnswer(model.ExamTypeTheory, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	th := a.(TheoryAnswer)
	want := []string{"an essay", "", "42"}
	for i := range want {
		if th.Texts[i] != want[i] {
			t.Fatalf("got %v, want %v", th.Texts, want)
		}
	}
}

func TestParseAnswerCoding(t *testing.T) {
	raw := json.RawMessage(`{"code":"function solve(x){return x}","language":"python"}`)
	a, err := ParseAnswer(model.ExamTypeCoding, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := a.(CodingAnswer)
	if c.Language != "python" {
		t.Errorf("language: got %q, want python", c.Language)
	}
}

func TestParseAnswerCodingDefaultLanguage(t *testing.T) {
	raw := json.RawMessage(`{"code":"x"}`)
	a, err := ParseAnswer(model.ExamTypeCoding, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.(CodingAnswer).Language != "javascript" {
		t.Errorf("expected javascript default, got %q", a.(CodingAnswer).Language)
	}
}

func TestParseAnswerCodingMissingCode(t *testing.T) {
	for _, raw := range []string{`{"code":""}`, `{"code":"   "}`, `{}`} {
		_, err := ParseAnswer(model.ExamTypeCoding, json.RawMessage(raw))
		if !errors.Is(err, ErrMissingCode) {
			t.Errorf("raw %s: got %v, want ErrMissingCode", raw, err)
		}
	}
}

func TestParseAnswerRejectsMalformed(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `42`, `not json`} {
		_, err := ParseAnswer(model.ExamTypeMCQ, json.RawMessage(raw))
		if !errors.Is(err, ErrInvalidAnswerFormat) {
			t.Errorf("raw %s: got %v, want ErrInvalidAnswerFormat", raw, err)
		}
	}
}
