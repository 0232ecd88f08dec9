// Package gateway is the HTTP client for the external code execution
// service (Piston-compatible API). The service is treated as opaque:
// callers submit a source file plus stdin and read back run output.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ExecFile is a single source file in an execution request.
type ExecFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ExecRequest is the wire payload for POST {base}/execute.
type ExecRequest struct {
	Language string     `json:"language"`
	Version  string     `json:"version"`
	Files    []ExecFile `json:"files"`
	Stdin    string     `json:"stdin,omitempty"`
}

// ExecStage holds the output of one execution stage (compile or run).
type ExecStage struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Output string `json:"output"`
	Code   int    `json:"code"`
}

// ExecResponse is the wire response from the execution service.
type ExecResponse struct {
	Language string     `json:"language"`
	Version  string     `json:"version"`
	Run      ExecStage  `json:"run"`
	Compile  *ExecStage `json:"compile,omitempty"`
}

// Client calls a Piston-compatible execution service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a gateway client. A zero timeout disables the
// client-side deadline and leaves hung calls to the transport.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "exec_gateway").Logger(),
	}
}

// Execute submits a source snippet for execution and returns the run output.
// Any transport failure or non-200 status is returned as an error; callers
// decide whether that is fatal (interactive run) or a failed test case
// (grading).
func (c *Client) Execute(ctx context.Context, req ExecRequest) (*ExecResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("language", req.Language).Msg("Gateway returned non-200")
		return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	var out ExecResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}
