package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"flowtap/internal/store"
	"flowtap/internal/workflow"
)

func seedWorkflow(t *testing.T, dbPath, id, name string) {
	t.Helper()
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()
	rec := store.WorkflowRecord{
		ID:   id,
		Name: name,
		Definition: workflow.Definition{
			ID:      id,
			Name:    name,
			Version: "1.0.0",
			Nodes:   []workflow.Node{{ID: "a", Type: workflow.NodeStart}},
		},
	}
	if err := store.SaveWorkflow(context.Background(), db, rec); err != nil {
		t.Fatalf("seed workflow: %v", err)
	}
}

func TestWorkflowsList(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.duckdb")
	cfgPath := writeConfigFile(t, dir, dbPath)
	seedWorkflow(t, dbPath, "wf-1", "Research pipeline")

	var stdout, stderr bytes.Buffer
	code := Run([]string{"workflows", "--config", cfgPath, "list"}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit ok, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "wf-1") || !strings.Contains(stdout.String(), "Research pipeline") {
		t.Fatalf("expected workflow in listing, got %q", stdout.String())
	}
}

func TestWorkflowsListEmpty(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir, filepath.Join(dir, "history.duckdb"))

	var stdout, stderr bytes.Buffer
	code := Run([]string{"workflows", "--config", cfgPath, "list"}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit ok, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "No workflows stored") {
		t.Fatalf("expected empty message, got %q", stdout.String())
	}
}

func TestWorkflowsDuplicate(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.duckdb")
	cfgPath := writeConfigFile(t, dir, dbPath)
	seedWorkflow(t, dbPath, "wf-1", "Research pipeline")

	var stdout, stderr bytes.Buffer
	code := Run([]string{"workflows", "--config", cfgPath, "duplicate", "wf-1"}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit ok, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Copy of Research pipeline") {
		t.Fatalf("expected duplicate name, got %q", stdout.String())
	}
}

func TestWorkflowsDelete(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.duckdb")
	cfgPath := writeConfigFile(t, dir, dbPath)
	seedWorkflow(t, dbPath, "wf-1", "Research pipeline")

	var stdout, stderr bytes.Buffer
	code := Run([]string{"workflows", "--config", cfgPath, "delete", "wf-1"}, &stdout, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit ok, got %d: %s", code, stderr.String())
	}

	stdout.Reset()
	stderr.Reset()
	code = Run([]string{"workflows", "--config", cfgPath, "delete", "wf-1"}, &stdout, &stderr)
	if code != ExitError {
		t.Fatalf("expected error for missing workflow, got %d", code)
	}
	if !strings.Contains(stderr.String(), "not found") {
		t.Fatalf("expected not found message, got %q", stderr.String())
	}
}

func TestWorkflowsUnknownSubcommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir, filepath.Join(dir, "history.duckdb"))

	var stdout, stderr bytes.Buffer
	code := Run([]string{"workflows", "--config", cfgPath, "rename"}, &stdout, &stderr)
	if code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}
