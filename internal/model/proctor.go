package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationKind identifies a detected proctoring-policy breach.
type ViolationKind string

const (
	ViolationFullscreenExit ViolationKind = "fullscreen_exit"
	ViolationTabHidden      ViolationKind = "tab_hidden"
)

// ProctorEvent is a persisted proctoring violation observed during an
// active exam attempt. Events are queued to Redis by the stream handler
// and batch-inserted by the violation worker.
type ProctorEvent struct {
	ID         int64         `json:"id"`
	ExamID     uuid.UUID     `json:"examId"`
	StudentID  uuid.UUID     `json:"studentId"`
	Kind       ViolationKind `json:"kind"`
	Count      int           `json:"count"`
	RecordedAt time.Time     `json:"recordedAt"`
}
