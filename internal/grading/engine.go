// Package grading computes a score for a typed answer against an exam
// definition. The three exam types share no scoring logic, so each is a
// separate branch over the answer union rather than runtime type-sniffing.
package grading

import (
	"context"
	"strings"

	"github.com/examhall/examhall-backend/internal/gateway"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/rs/zerolog"
)

// MaxTestCases caps how many test cases a coding submission attempts.
const MaxTestCases = 20

// Executor runs code on the external execution gateway.
type Executor interface {
	Execute(ctx context.Context, req gateway.ExecRequest) (*gateway.ExecResponse, error)
}

// Outcome is the result of grading one submission.
type Outcome struct {
	ExamType       model.ExamType
	Score          int
	TotalQuestions int

	// Exactly one of the following is set, matching ExamType.
	MCQAnswers    []int
	TheoryAnswers []string
	Coding        *model.CodingSubmission
}

// Engine grades submissions. It is stateless; grading is idempotent for
// MCQ and theory, and for coding up to gateway nondeterminism.
type Engine struct {
	exec Executor
	log  zerolog.Logger
}

// NewEngine creates a grading engine backed by the given executor.
func NewEngine(exec Executor, log zerolog.Logger) *Engine {
	return &Engine{
		exec: exec,
		log:  log.With().Str("component", "grading_engine").Logger(),
	}
}

// Grade scores a typed answer against the exam definition.
func (e *Engine) Grade(ctx context.Context, exam *model.Exam, answer Answer) (*Outcome, error) {
	switch a := answer.(type) {
	case MCQAnswer:
		return e.gradeMCQ(exam, a), nil
	case TheoryAnswer:
		return e.gradeTheory(exam, a), nil
	case CodingAnswer:
		return e.gradeCoding(ctx, exam, a), nil
	default:
		return nil, ErrInvalidAnswerFormat
	}
}

// gradeMCQ counts positions where the selected index equals the question's
// correct index. Missing or malformed selections never match and never panic.
func (e *Engine) gradeMCQ(exam *model.Exam, a MCQAnswer) *Outcome {
	score := 0
	for i, q := range exam.Questions {
		if i < len(a.Selections) && a.Selections[i] >= 0 && a.Selections[i] == q.CorrectAnswer {
			score++
		}
	}
	return &Outcome{
		ExamType:       model.ExamTypeMCQ,
		Score:          score,
		TotalQuestions: len(exam.Questions),
		MCQAnswers:     a.Selections,
	}
}

// gradeTheory stores the answers for deferred manual review; the automatic
// score is fixed at zero.
func (e *Engine) gradeTheory(exam *model.Exam, a TheoryAnswer) *Outcome {
	return &Outcome{
		ExamType:       model.ExamTypeTheory,
		Score:          0,
		TotalQuestions: len(exam.Questions),
		TheoryAnswers:  a.Texts,
	}
}

// gradeCoding runs the first question's test cases (capped at MaxTestCases)
// through the execution gateway, one at a time. A case passes iff the
// trimmed stdout equals the expected string exactly. A gateway failure on
// one case counts that case as failed and grading continues: a single
// infrastructure error must not fail the submission.
func (e *Engine) gradeCoding(ctx context.Context, exam *model.Exam, a CodingAnswer) *Outcome {
	h := HarnessFor(a.Language)

	var cases []model.TestCase
	if len(exam.Questions) > 0 {
		cases = exam.Questions[0].TestCases
	}
	if len(cases) > MaxTestCases {
		cases = cases[:MaxTestCases]
	}

	if strings.TrimSpace(a.Code) == "" {
		// Forced submissions can arrive with no code written; nothing to run.
		return &Outcome{
			ExamType:       model.ExamTypeCoding,
			Score:          0,
			TotalQuestions: len(cases),
			Coding: &model.CodingSubmission{
				Code:     a.Code,
				Language: a.Language,
				Passed:   0,
				Total:    len(cases),
			},
		}
	}

	passed := 0
	for i, tc := range cases {
		resp, err := e.exec.Execute(ctx, gateway.ExecRequest{
			Language: h.Language,
			Version:  h.Version,
			Files: []gateway.ExecFile{
				{Name: h.FileName, Content: h.Render(a.Code, tc.Input)},
			},
		})
		if err != nil {
			e.log.Warn().Err(err).
				Str("exam_id", exam.ID.String()).
				Int("case", i).
				Msg("Gateway call failed, counting case as failed")
			continue
		}
		if strings.TrimSpace(resp.Run.Stdout) == tc.Expected {
			passed++
		}
	}

	return &Outcome{
		ExamType:       model.ExamTypeCoding,
		Score:          passed,
		TotalQuestions: len(cases),
		Coding: &model.CodingSubmission{
			Code:     a.Code,
			Language: a.Language,
			Passed:   passed,
			Total:    len(cases),
		},
	}
}
