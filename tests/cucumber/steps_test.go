package cucumber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"flowtap/internal/cli"
)

// featureState holds scenario state for CLI feature tests. Fixture paths are
// substituted into commands via $RECORDING, $WORKFLOW and $CONFIG tokens.
type featureState struct {
	workDir   string
	recording string
	workflow  string
	config    string
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	exitCode  int
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a recording of a successful run$`, state.aRecordingOfASuccessfulRun)
	ctx.Step(`^a recording of a failed run$`, state.aRecordingOfAFailedRun)
	ctx.Step(`^a workflow definition file$`, state.aWorkflowDefinitionFile)
	ctx.Step(`^a workflow definition file without a start node$`, state.aWorkflowWithoutStartNode)
	ctx.Step(`^a project configuration$`, state.aProjectConfiguration)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the exit code is zero$`, state.theExitCodeIsZero)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the output contains "([^"]+)"$`, state.theOutputContains)
	ctx.Step(`^the output reports node "([^"]+)" completed$`, state.theOutputReportsNodeCompleted)
	ctx.Step(`^the output reports the run completed$`, state.theOutputReportsRunCompleted)
	ctx.Step(`^the output reports the run failed$`, state.theOutputReportsRunFailed)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
}

func (s *featureState) reset() error {
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
	s.recording = ""
	s.workflow = ""
	s.config = ""
	dir, err := os.MkdirTemp("", "flowtap-cucumber-")
	if err != nil {
		return fmt.Errorf("create scenario dir: %w", err)
	}
	s.workDir = dir
	return nil
}

func (s *featureState) cleanup() {
	if s.workDir != "" {
		_ = os.RemoveAll(s.workDir)
	}
}

func sseFrame(name, data string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)
}

func (s *featureState) aRecordingOfASuccessfulRun() error {
	stream := sseFrame("WORKFLOW_START::start-1", `{"contentCategory":"atomic.textblock","content":"Workflow started"}`) +
		sseFrame("AGENT_THINKING::s1", `{"contentCategory":"chunked.text","streamId":"t1","content":"Thinking","isComplete":false}`) +
		sseFrame("AGENT_THINKING::s1", `{"contentCategory":"chunked.text","streamId":"t1","content":"...done.","isComplete":true}`) +
		sseFrame("AGENT_RESPONSE::s1", `{"contentCategory":"chunked.text","streamId":"r1","content":"42","isComplete":true}`) +
		sseFrame("NODE_COMPLETE::s1", `{"contentCategory":"atomic.textblock","content":"node complete"}`) +
		sseFrame("DONE", `{"contentCategory":"atomic.done"}`)
	return s.writeRecording(stream)
}

func (s *featureState) aRecordingOfAFailedRun() error {
	stream := sseFrame("WORKFLOW_START::start-1", `{"contentCategory":"atomic.textblock","content":"Workflow started"}`) +
		sseFrame("ERROR::s1", `{"contentCategory":"atomic.error","errorMessage":"tool exploded","errorCode":500}`) +
		sseFrame("ERROR", `{"contentCategory":"atomic.error","errorMessage":"workflow failed","errorCode":500}`)
	return s.writeRecording(stream)
}

func (s *featureState) writeRecording(stream string) error {
	path := filepath.Join(s.workDir, "run.sse")
	if err := os.WriteFile(path, []byte(stream), 0o644); err != nil {
		return fmt.Errorf("write recording: %w", err)
	}
	s.recording = path
	return nil
}

func (s *featureState) aWorkflowDefinitionFile() error {
	doc := `{
  "id": "wf-1",
  "name": "Research pipeline",
  "version": "1.0.0",
  "nodes": [
    {"id": "start-1", "type": "start"},
    {"id": "s1", "type": "agent"}
  ],
  "edges": [
    {"id": "e1", "source": "start-1", "target": "s1"}
  ]
}`
	return s.writeWorkflow(doc)
}

func (s *featureState) aWorkflowWithoutStartNode() error {
	doc := `{"id": "wf-2", "nodes": [{"id": "s1", "type": "agent"}]}`
	return s.writeWorkflow(doc)
}

func (s *featureState) writeWorkflow(doc string) error {
	path := filepath.Join(s.workDir, "workflow.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	s.workflow = path
	return nil
}

func (s *featureState) aProjectConfiguration() error {
	dbPath := filepath.Join(s.workDir, "history.duckdb")
	doc := fmt.Sprintf("version: 1\nengine:\n  base_url: http://localhost:8787\ndatabase:\n  path: %s\n", dbPath)
	path := filepath.Join(s.workDir, ".flowtap.yml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	s.config = path
	return nil
}

func (s *featureState) iRunCommand(command string) error {
	expanded := strings.NewReplacer(
		"$RECORDING", s.recording,
		"$WORKFLOW", s.workflow,
		"$CONFIG", s.config,
	).Replace(command)
	args := strings.Fields(expanded)
	if len(args) == 0 {
		return fmt.Errorf("command is empty")
	}
	if args[0] == "flowtap" {
		args = args[1:]
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

func (s *featureState) theExitCodeIsZero() error {
	if s.exitCode != 0 {
		return fmt.Errorf("expected exit 0, got %d (stderr: %s)", s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit code")
	}
	return nil
}

func (s *featureState) theOutputContains(text string) error {
	if !strings.Contains(s.stdout.String(), text) && !strings.Contains(s.stderr.String(), text) {
		return fmt.Errorf("expected output to contain %q, got stdout %q stderr %q", text, s.stdout.String(), s.stderr.String())
	}
	return nil
}

func (s *featureState) theOutputReportsNodeCompleted(stepID string) error {
	return s.theOutputContains(fmt.Sprintf("Node %s completed", stepID))
}

func (s *featureState) theOutputReportsRunCompleted() error {
	return s.theOutputContains("completed")
}

func (s *featureState) theOutputReportsRunFailed() error {
	return s.theOutputContains("failed")
}

func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	for _, row := range table.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		name := row.Cells[0].Value
		if !strings.Contains(s.stdout.String(), name) {
			return fmt.Errorf("expected command %q in output, got %q", name, s.stdout.String())
		}
	}
	return nil
}
