package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CodingSubmission is the stored payload for a coding result.
type CodingSubmission struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Passed   int    `json:"passed"`
	Total    int    `json:"total"`
}

// Result is a persisted grading outcome for one submission attempt.
// ExamType is denormalized from the exam at submission time so result
// listings never need a join for filtering. Exactly one of MCQAnswers,
// TheoryAnswers or Coding is set, matching ExamType. Results are
// insert-only: no update or delete path exists, and duplicates per
// (exam, student) pair are allowed.
type Result struct {
	ID             uuid.UUID         `json:"id"`
	ExamID         uuid.UUID         `json:"examId"`
	StudentID      uuid.UUID         `json:"studentId"`
	ExamType       ExamType          `json:"examType"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"totalQuestions"`
	MCQAnswers     []int             `json:"mcqAnswers,omitempty"`
	TheoryAnswers  []string          `json:"theoryAnswers,omitempty"`
	Coding         *CodingSubmission `json:"coding,omitempty"`
	AutoSubmit     bool              `json:"autoSubmit"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ResultSummary is a listing row: the result plus the exam fields the
// results dashboard shows without loading full question documents.
type ResultSummary struct {
	Result
	ExamTitle string `json:"examTitle"`
}

// ResultDetail is a single result with its exam populated for admin review.
type ResultDetail struct {
	Result
	Exam *Exam `json:"exam"`
}

// SubmitRequest is the payload for submitting exam answers. Answers is the
// raw document whose shape depends on the exam type; it is decoded into a
// typed answer exactly once at the grading boundary.
type SubmitRequest struct {
	ExamID    string          `json:"examId" binding:"required"`
	StudentID string          `json:"studentId" binding:"required"`
	Answers   json.RawMessage `json:"answers" binding:"required"`
}

// SubmitResponse is the summary returned to the caller after grading.
type SubmitResponse struct {
	Score    int       `json:"score"`
	Total    int       `json:"total"`
	ResultID uuid.UUID `json:"resultId"`
}
