package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"flowtap/internal/config"
	"flowtap/internal/engine"
	"flowtap/internal/replay"
	"flowtap/internal/store"
	"flowtap/internal/stream"
	"flowtap/internal/ui/live"
	"flowtap/internal/workflow"
)

// inputFlags collects repeated --input key=value pairs. Values that parse as
// JSON are passed through; anything else becomes a JSON string.
type inputFlags struct {
	values map[string]json.RawMessage
}

func (f *inputFlags) String() string {
	return fmt.Sprintf("%d inputs", len(f.values))
}

func (f *inputFlags) Set(raw string) error {
	key, value, found := strings.Cut(raw, "=")
	if !found || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	if f.values == nil {
		f.values = map[string]json.RawMessage{}
	}
	if json.Valid([]byte(value)) {
		f.values[key] = json.RawMessage(value)
		return nil
	}
	quoted, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode input %q: %w", key, err)
	}
	f.values[key] = quoted
	return nil
}

// executeStream is a test seam for starting an engine execution.
var executeStream = func(ctx context.Context, client *engine.Client, req engine.ExecuteRequest) (io.ReadCloser, error) {
	return client.Execute(ctx, req)
}

func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .flowtap.yml)")
		engineURL := fs.String("engine", "", "Engine base URL override")
		uiMode := fs.String("ui", "auto", "UI mode: auto, live or plain")
		gating := fs.String("gating", "", "Channel gating policy override")
		record := fs.String("record", "", "Record the raw stream to a file")
		var inputs inputFlags
		fs.Var(&inputs, "input", "Workflow input as key=value (repeatable)")
		positional, err := parseFlags(fs, args)
		if err != nil {
			return ExitUsage
		}
		if len(positional) == 0 {
			fmt.Fprintln(stderr, "Missing <workflow.json>")
			return ExitUsage
		}
		if len(positional) > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}
		path := positional[0]

		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		if *engineURL != "" {
			cfg.Engine.BaseURL = *engineURL
		}
		if cfg.Engine.BaseURL == "" {
			fmt.Fprintln(stderr, "No engine URL configured; set engine.base_url or pass --engine")
			return ExitUsage
		}
		if *gating != "" {
			cfg.Stream.Gating = *gating
		}
		policy := stream.GatingPolicy(cfg.Stream.Gating)
		if !policy.Valid() {
			fmt.Fprintf(stderr, "Unknown gating policy %q\n", cfg.Stream.Gating)
			return ExitUsage
		}

		def, err := readDefinition(path)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}
		if code := checkDefinition(def, stderr); code != ExitOK {
			return code
		}

		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		client, err := engine.NewClient(cfg.Engine.BaseURL, http.DefaultClient)
		if err != nil {
			fmt.Fprintf(stderr, "Engine client: %v\n", err)
			return ExitError
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if cfg.Engine.TimeoutSeconds > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Engine.TimeoutSeconds)*time.Second)
			defer cancel()
		}

		body, err := executeStream(ctx, client, engine.ExecuteRequest{
			WorkflowID:     def.ID,
			Definition:     def,
			InputVariables: inputs.values,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Execution request failed: %v\n", err)
			return ExitError
		}

		if *record != "" {
			recorder, err := replay.NewRecorder(*record)
			if err != nil {
				body.Close()
				fmt.Fprintf(stderr, "%v\n", err)
				return ExitError
			}
			defer recorder.Close()
			body = recorder.Wrap(body)
		}

		snap, code := consumeStream(ctx, cfg, policy, decision, def.Name, body, stdout, stderr)
		archiveSnapshot(cfg, def, snap, stdout, stderr)
		return code
	}
}

// consumeStream runs the processor over a stream source with the selected
// UI and returns the terminal snapshot.
func consumeStream(ctx context.Context, cfg config.Config, policy stream.GatingPolicy, decision uiModeDecision, workflowName string, source io.Reader, stdout, stderr io.Writer) (stream.RunSnapshot, int) {
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var observer stream.Observer
	var controller *live.Controller
	if decision.useLive {
		controller = live.Start(stdout, live.Options{
			Workflow:     workflowName,
			NoColor:      cfg.UI.NoColor,
			TickInterval: time.Duration(cfg.UI.TickIntervalMs) * time.Millisecond,
			Cancel:       cancelRun,
		})
		observer = controller
	} else {
		observer = newPlainObserver(stdout)
	}

	proc := stream.NewProcessor(stream.Options{
		Gating:     policy,
		Observer:   observer,
		ReadBuffer: cfg.Stream.ReadBuffer,
	})
	cancelled := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			proc.Cancel()
		case <-cancelled:
		}
	}()
	if err := proc.Start(ctx, source); err != nil {
		close(cancelled)
		controller.Close()
		controller.Wait()
		fmt.Fprintf(stderr, "Stream failed: %v\n", err)
		return stream.RunSnapshot{}, ExitError
	}
	proc.Wait()
	close(cancelled)
	controller.Close()
	controller.Wait()

	snap := proc.Snapshot("")
	if snap.Status == stream.RunError {
		return snap, ExitError
	}
	return snap, ExitOK
}

// archiveSnapshot persists the workflow and its terminal run. History is
// best effort: failures are reported but never change the exit code.
func archiveSnapshot(cfg config.Config, def workflow.Definition, snap stream.RunSnapshot, stdout, stderr io.Writer) {
	if snap.RunID == "" || cfg.Database.Path == "" {
		return
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(stderr, "History unavailable: %v\n", err)
		return
	}
	defer db.Close()
	ctx := context.Background()
	rec := store.WorkflowRecord{ID: def.ID, Name: def.Name, Description: def.Description, Definition: def}
	if err := store.SaveWorkflow(ctx, db, rec); err != nil {
		fmt.Fprintf(stderr, "Failed to save workflow: %v\n", err)
		return
	}
	if err := store.ArchiveRun(ctx, db, def.ID, snap); err != nil {
		fmt.Fprintf(stderr, "Failed to archive run: %v\n", err)
		return
	}
	fmt.Fprintf(stdout, "Archived run %s\n", snap.RunID)
}

// readDefinition loads and parses a workflow definition file.
func readDefinition(path string) (workflow.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return workflow.Definition{}, fmt.Errorf("read workflow: %w", err)
	}
	def, err := workflow.Parse(data)
	if err != nil {
		return workflow.Definition{}, err
	}
	return def, nil
}

// checkDefinition validates the workflow graph before contacting the engine.
func checkDefinition(def workflow.Definition, stderr io.Writer) int {
	validation := workflow.NewGraph(def).Validate()
	if validation.Valid {
		return ExitOK
	}
	fmt.Fprintln(stderr, "Workflow validation failed:")
	for _, issue := range validation.Errors {
		fmt.Fprintf(stderr, "  %s\n", issue)
	}
	return ExitError
}
