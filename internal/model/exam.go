package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamType determines the question/answer shape of an exam. Immutable once set.
type ExamType string

const (
	ExamTypeMCQ    ExamType = "mcq"
	ExamTypeTheory ExamType = "theory"
	ExamTypeCoding ExamType = "coding"
)

// Valid reports whether t is a known exam type.
func (t ExamType) Valid() bool {
	switch t {
	case ExamTypeMCQ, ExamTypeTheory, ExamTypeCoding:
		return true
	}
	return false
}

// TestCase is one (input, expected-output) pair for a coding question.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// Question is a single exam question. Fields beyond the prompt are
// type-specific: Options/CorrectAnswer for MCQ, StarterCode/TestCases for
// coding, prompt only for theory.
type Question struct {
	Prompt        string     `json:"question"`
	Options       []string   `json:"options,omitempty"`
	CorrectAnswer int        `json:"correctAnswer"`
	StarterCode   string     `json:"starterCode,omitempty"`
	TestCases     []TestCase `json:"testcases,omitempty"`
}

// Exam represents an authored exam definition. Questions are stored as a
// JSONB document on the exam row so grading never needs a join.
type Exam struct {
	ID               uuid.UUID  `json:"id"`
	ExamType         ExamType   `json:"examType"`
	Title            string     `json:"title"`
	Questions        []Question `json:"questions"`
	AllowedLanguages []string   `json:"allowedLanguages,omitempty"`
	StartTime        *time.Time `json:"startTime,omitempty"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	DurationMinutes  *int       `json:"duration,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Locked reports whether the exam definition is immutable: once StartTime
// is at or before now, no field may be edited.
func (e *Exam) Locked(now time.Time) bool {
	return e.StartTime != nil && !e.StartTime.After(now)
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title            string     `json:"title" binding:"required,min=1,max=255"`
	ExamType         string     `json:"examType" binding:"required,oneof=mcq theory coding"`
	Questions        []Question `json:"questions" binding:"required,min=1"`
	AllowedLanguages []string   `json:"allowedLanguages" binding:"omitempty"`
	StartTime        *time.Time `json:"startTime" binding:"omitempty"`
	EndTime          *time.Time `json:"endTime" binding:"omitempty,gtfield=StartTime"`
	DurationMinutes  *int       `json:"duration" binding:"omitempty,min=1,max=480"`
}

// UpdateExamRequest is the payload for updating an existing exam.
// Omitted fields keep their prior values (shallow merge).
type UpdateExamRequest struct {
	Title            *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Questions        []Question `json:"questions" binding:"omitempty,min=1"`
	AllowedLanguages []string   `json:"allowedLanguages" binding:"omitempty"`
	StartTime        *time.Time `json:"startTime" binding:"omitempty"`
	EndTime          *time.Time `json:"endTime" binding:"omitempty"`
	DurationMinutes  *int       `json:"duration" binding:"omitempty,min=1,max=480"`
}

// StudentQuestion is a question as shown to a student: no correct option
// index and no expected test-case outputs.
type StudentQuestion struct {
	Prompt      string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	StarterCode string   `json:"starterCode,omitempty"`
	// SampleInputs lets the exam UI offer "run against samples" without
	// revealing the expected outputs.
	SampleInputs []string `json:"sampleInputs,omitempty"`
}

// ExamPayload is the student-facing exam view, cached in Redis.
type ExamPayload struct {
	ExamID           uuid.UUID         `json:"examId"`
	Title            string            `json:"title"`
	ExamType         ExamType          `json:"examType"`
	Questions        []StudentQuestion `json:"questions"`
	AllowedLanguages []string          `json:"allowedLanguages,omitempty"`
	StartTime        *time.Time        `json:"startTime,omitempty"`
	EndTime          *time.Time        `json:"endTime,omitempty"`
	DurationMinutes  *int              `json:"duration,omitempty"`
}
