package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/examhall/examhall-backend/internal/gateway"
	"github.com/examhall/examhall-backend/internal/grading"
	"github.com/rs/zerolog"
)

// ErrGatewayUnavailable is returned when the execution gateway cannot be
// reached for an interactive run. Unlike grading, an interactive run has no
// partial-credit fallback, so the failure is surfaced to the caller.
var ErrGatewayUnavailable = errors.New("execution gateway unavailable")

// RunRequest is an interactive code run from the coding exam screen.
type RunRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language" binding:"required"`
	Input    string `json:"input"`
}

// RunResult is the output of an interactive run.
type RunResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// ExecService runs student code against the execution gateway outside of
// grading, so students can try their solution before submitting.
type ExecService struct {
	exec grading.Executor
	log  zerolog.Logger
}

// NewExecService creates a new ExecService.
func NewExecService(exec grading.Executor, log zerolog.Logger) *ExecService {
	return &ExecService{
		exec: exec,
		log:  log.With().Str("component", "exec_service").Logger(),
	}
}

// Run executes code with the given input through the gateway.
func (s *ExecService) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	h, err := grading.LookupHarness(req.Language)
	if err != nil {
		return nil, err
	}

	resp, err := s.exec.Execute(ctx, gateway.ExecRequest{
		Language: h.Language,
		Version:  h.Version,
		Files: []gateway.ExecFile{
			{Name: h.FileName, Content: h.Render(req.Code, req.Input)},
		},
	})
	if err != nil {
		s.log.Error().Err(err).Str("language", req.Language).Msg("Interactive run failed")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	return &RunResult{
		Stdout: resp.Run.Stdout,
		Stderr: resp.Run.Stderr,
	}, nil
}
