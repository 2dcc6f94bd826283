package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flowtap/internal/stream"
	"flowtap/internal/testutil"
	"flowtap/internal/workflow"
)

func executeRequest() ExecuteRequest {
	return ExecuteRequest{
		WorkflowID: "wf-1",
		Definition: workflow.Definition{
			ID:    "wf-1",
			Nodes: []workflow.Node{{ID: "a", Type: workflow.NodeStart}},
		},
	}
}

// TestExecuteStreamsIntoProcessor verifies the engine stream drives the
// processor end to end.
func TestExecuteStreamsIntoProcessor(t *testing.T) {
	server := testutil.StartSSEServer(t, testutil.SSEServerConfig{
		Frames: []testutil.SSEFrame{
			{Name: "WORKFLOW_START::a", Data: `{"contentCategory":"atomic.textblock","content":"go"}`},
			{Name: "AGENT_RESPONSE::a", Data: `{"contentCategory":"chunked.text","streamId":"s","content":"42","isComplete":true}`},
			{Name: "DONE", Data: `{"contentCategory":"atomic.done"}`},
		},
	})
	client, err := NewClient(server.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := testutil.Context(t, 5*time.Second)
	body, err := client.Execute(ctx, executeRequest())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	processor := stream.NewProcessor(stream.Options{})
	if err := processor.Start(ctx, body); err != nil {
		t.Fatalf("start processor: %v", err)
	}
	processor.Wait()

	snap := processor.Snapshot("")
	if snap.Status != stream.RunCompleted {
		t.Fatalf("expected completed run, got %s", snap.Status)
	}
	if got := snap.Blocks[0].Channels["output"].Committed[0]; got != "42" {
		t.Fatalf("unexpected output: %q", got)
	}
}

// TestExecuteNon200 verifies engine failures surface with the status and body.
func TestExecuteNon200(t *testing.T) {
	server := testutil.StartSSEServer(t, testutil.SSEServerConfig{Status: http.StatusBadGateway})
	client, err := NewClient(server.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Execute(context.Background(), executeRequest())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

// TestExecuteRequiresWorkflowID verifies input validation.
func TestExecuteRequiresWorkflowID(t *testing.T) {
	client, err := NewClient("http://localhost:1", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Execute(context.Background(), ExecuteRequest{}); err == nil {
		t.Fatalf("expected error for missing workflow ID")
	}
}

// TestValidateRoundTrip verifies the validation endpoint decoding.
func TestValidateRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/validate") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":false,"errors":["workflow contains cycles"],"nodeCount":2,"edgeCount":2,"hasCycles":true}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	validation, err := client.Validate(context.Background(), workflow.Definition{ID: "wf-1"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validation.Valid || !validation.HasCycles {
		t.Fatalf("unexpected validation: %+v", validation)
	}
}

// TestNewClientRequiresBaseURL verifies constructor validation.
func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  ", nil); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
