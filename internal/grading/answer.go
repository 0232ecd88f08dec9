package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/examhall/examhall-backend/internal/model"
)

// Parse errors surfaced to the submission caller.
var (
	ErrInvalidAnswerFormat = errors.New("invalid answers format")
	ErrMissingCode         = errors.New("code is required")
)

// Answer is the tagged union of submitted answer payloads. The raw
// document is decoded into exactly one variant at the submission boundary;
// everything downstream works with the typed form.
type Answer interface {
	kind() model.ExamType
}

// MCQAnswer holds the selected option index per question position.
// An entry of -1 marks a selection that could not be coerced to an index;
// it never matches any correct answer.
type MCQAnswer struct {
	Selections []int
}

func (MCQAnswer) kind() model.ExamType { return model.ExamTypeMCQ }

// TheoryAnswer holds free-text answers by question position.
type TheoryAnswer struct {
	Texts []string
}

func (TheoryAnswer) kind() model.ExamType { return model.ExamTypeTheory }

// CodingAnswer holds a submitted source snippet and its declared language.
type CodingAnswer struct {
	Code     string
	Language string
}

func (CodingAnswer) kind() model.ExamType { return model.ExamTypeCoding }

// ParseAnswer decodes a raw answers document into the typed variant for
// the given exam type.
//
// MCQ and theory answers arrive either as an ordered array or as a map of
// stringified index to value; maps are projected to an array with keys
// sorted numerically. Coding answers arrive as a {code, language} record
// with the language defaulting to "javascript".
func ParseAnswer(examType model.ExamType, raw json.RawMessage) (Answer, error) {
	switch examType {
	case model.ExamTypeCoding:
		return parseCoding(raw)
	case model.ExamTypeTheory:
		entries, err := orderedEntries(raw)
		if err != nil {
			return nil, err
		}
		texts := make([]string, len(entries))
		for i, v := range entries {
			texts[i] = coerceString(v)
		}
		return TheoryAnswer{Texts: texts}, nil
	default: // MCQ
		entries, err := orderedEntries(raw)
		if err != nil {
			return nil, err
		}
		selections := make([]int, len(entries))
		for i, v := range entries {
			selections[i] = coerceIndex(v)
		}
		return MCQAnswer{Selections: selections}, nil
	}
}

func parseCoding(raw json.RawMessage) (Answer, error) {
	var rec struct {
		Code     string `json:"code"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, ErrInvalidAnswerFormat
	}
	if rec.Language == "" {
		rec.Language = "javascript"
	}
	if strings.TrimSpace(rec.Code) == "" {
		return nil, ErrMissingCode
	}
	return CodingAnswer{Code: rec.Code, Language: rec.Language}, nil
}

// orderedEntries normalizes an array or index→value map into an ordered
// slice. Map keys are sorted numerically, not lexically, so "10" comes
// after "9".
func orderedEntries(raw json.RawMessage) ([]interface{}, error) {
	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, ErrInvalidAnswerFormat
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseFloat(keys[i], 64)
		b, _ := strconv.ParseFloat(keys[j], 64)
		return a < b
	})

	out := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out, nil
}

// coerceIndex converts a decoded JSON value to an option index.
// Returns -1 for anything that is not a whole number, so a malformed
// selection compares as not-equal instead of failing the submission.
func coerceIndex(v interface{}) int {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return -1
}

// coerceString converts a decoded JSON value to a string; nil becomes "".
func coerceString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}
