// Package engine is the HTTP client for the workflow engine: it issues
// execution requests and hands the resulting event stream to the stream
// processor.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"flowtap/internal/workflow"
)

// HTTPDoer abstracts the HTTP client used for engine calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one workflow engine instance.
type Client struct {
	BaseURL string
	Client  HTTPDoer
}

// NewClient constructs an engine client with explicit settings.
func NewClient(baseURL string, client HTTPDoer) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("engine base URL is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}, nil
}

// ExecuteRequest is the body of an execution call.
type ExecuteRequest struct {
	WorkflowID     string                     `json:"workflowId"`
	Definition     workflow.Definition        `json:"workflowDefinition"`
	InputVariables map[string]json.RawMessage `json:"inputVariables"`
}

// Execute starts a workflow execution and returns the raw event stream. The
// caller owns the returned body; cancelling ctx or closing it aborts the
// stream mid-flight.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (io.ReadCloser, error) {
	if req.WorkflowID == "" {
		return nil, fmt.Errorf("workflow ID is required")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal execute request: %w", err)
	}
	url := fmt.Sprintf("%s/api/workflows/%s/execute", c.BaseURL, req.WorkflowID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build execute request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute workflow: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("engine returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp.Body, nil
}

// Validate asks the engine to validate a workflow without executing it.
func (c *Client) Validate(ctx context.Context, def workflow.Definition) (workflow.Validation, error) {
	body, err := json.Marshal(def)
	if err != nil {
		return workflow.Validation{}, fmt.Errorf("marshal workflow: %w", err)
	}
	url := fmt.Sprintf("%s/api/workflows/%s/validate", c.BaseURL, def.ID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return workflow.Validation{}, fmt.Errorf("build validate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return workflow.Validation{}, fmt.Errorf("validate workflow: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return workflow.Validation{}, fmt.Errorf("engine returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	var validation workflow.Validation
	if err := json.NewDecoder(resp.Body).Decode(&validation); err != nil {
		return workflow.Validation{}, fmt.Errorf("decode validation response: %w", err)
	}
	return validation, nil
}
