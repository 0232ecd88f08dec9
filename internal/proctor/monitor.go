// Package proctor tracks the integrity of one in-flight exam attempt:
// a countdown against the exam's time budget and a violation counter fed
// by fullscreen-exit and tab-hidden signals. Both the timer and the
// counter funnel into a single guarded submission trigger.
package proctor

import (
	"sync"
	"time"

	"github.com/examhall/examhall-backend/internal/model"
)

// State is the monitor's lifecycle state.
type State string

const (
	StateNotStarted     State = "not_started"
	StateRunning        State = "running"
	StateWarned         State = "warned"
	StateAutoSubmitting State = "auto_submitting"
	StateSubmitted      State = "submitted"
)

// MaxViolations is the violation count that forces submission.
const MaxViolations = 4

// Transition describes what the caller should do after feeding the
// monitor an input.
type Transition struct {
	State      State
	Violations int
	// Warn is set when the attempt should pause behind a blocking warning.
	Warn bool
	// Submit is set at most once across the monitor's lifetime, on the
	// transition that must fire the submission call. Auto distinguishes a
	// forced submission from a manual one.
	Submit bool
	Auto   bool
}

// Monitor is the per-attempt state machine. Safe for use from the ticker
// goroutine and the event-reading loop concurrently.
type Monitor struct {
	mu         sync.Mutex
	state      State
	remaining  time.Duration
	unbounded  bool
	violations int
	fired      bool
}

// NewMonitor computes the attempt's time budget: the exam duration when
// set, else the end of the scheduling window, else unbounded.
func NewMonitor(exam *model.Exam, now time.Time) *Monitor {
	m := &Monitor{state: StateNotStarted, unbounded: true}

	if exam.DurationMinutes != nil && *exam.DurationMinutes > 0 {
		m.unbounded = false
		m.remaining = time.Duration(*exam.DurationMinutes) * time.Minute
	} else if exam.StartTime != nil && exam.EndTime != nil {
		m.unbounded = false
		m.remaining = exam.EndTime.Sub(now)
	}

	return m
}

// Start moves the monitor into the running state.
func (m *Monitor) Start() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateNotStarted {
		m.state = StateRunning
	}
	return m.snapshot()
}

// Tick advances the countdown by one second. When the budget is exhausted
// it arms the auto-submission, exactly once.
func (m *Monitor) Tick() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.terminal() || m.unbounded {
		return m.snapshot()
	}

	m.remaining -= time.Second
	if m.remaining <= 0 {
		m.remaining = 0
		return m.autoSubmitLocked()
	}
	return m.snapshot()
}

// RecordViolation counts a proctoring breach. Below the threshold the
// attempt pauses behind a warning; the increment that reaches the
// threshold skips the warning and arms the auto-submission.
func (m *Monitor) RecordViolation(kind model.ViolationKind) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.terminal() {
		return m.snapshot()
	}

	m.violations++
	if m.violations >= MaxViolations {
		return m.autoSubmitLocked()
	}

	m.state = StateWarned
	t := m.snapshot()
	t.Warn = true
	return t
}

// Acknowledge resumes a warned attempt. Failing to re-enter fullscreen
// does not block resuming; that only risks a further violation.
func (m *Monitor) Acknowledge() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateWarned {
		m.state = StateRunning
	}
	return m.snapshot()
}

// Submit is the manual submission path. Returns Submit=true only for the
// first terminal transition; any later trigger is a no-op.
func (m *Monitor) Submit() Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.terminal() {
		return m.snapshot()
	}

	m.state = StateSubmitted
	m.fired = true
	t := m.snapshot()
	t.Submit = true
	return t
}

// Release reopens an attempt whose manual submission failed downstream,
// clearing the terminal guard so the student can submit again. Only a
// manual Submit may be released; forced submissions stay terminal, so
// callers must not Release after an auto-armed transition.
func (m *Monitor) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateSubmitted {
		return
	}
	m.fired = false
	m.state = StateRunning
}

// MarkSubmitted records that the armed auto-submission completed.
func (m *Monitor) MarkSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateSubmitted
}

// Remaining reports the current countdown value; the second return is
// false when the attempt has no time budget.
func (m *Monitor) Remaining() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining, !m.unbounded
}

// Violations reports the current violation count.
func (m *Monitor) Violations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.violations
}

// State reports the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Monitor) terminal() bool {
	return m.state == StateAutoSubmitting || m.state == StateSubmitted
}

// autoSubmitLocked is the guarded terminal transition. The fired flag is
// the compare-and-set ensuring at most one submission fires even when the
// timer and the violation counter trigger in the same tick.
func (m *Monitor) autoSubmitLocked() Transition {
	if m.fired {
		return m.snapshot()
	}
	m.fired = true
	m.state = StateAutoSubmitting

	t := m.snapshot()
	t.Submit = true
	t.Auto = true
	return t
}

func (m *Monitor) snapshot() Transition {
	return Transition{State: m.state, Violations: m.violations}
}
