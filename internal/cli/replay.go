package cli

import (
	"flag"
	"fmt"
	"io"
	"time"

	"flowtap/internal/replay"
	"flowtap/internal/stream"
	"flowtap/internal/ui/live"
)

func runReplay(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .flowtap.yml)")
		uiMode := fs.String("ui", "auto", "UI mode: auto, live or plain")
		gating := fs.String("gating", "", "Channel gating policy override")
		chunkSize := fs.Int("chunk-size", 0, "Bytes fed per step (0 feeds the whole recording)")
		delayMs := fs.Int("delay", 0, "Pause between chunks in milliseconds")
		positional, err := parseFlags(fs, args)
		if err != nil {
			return ExitUsage
		}
		if len(positional) == 0 {
			fmt.Fprintln(stderr, "Missing <recording.sse>")
			return ExitUsage
		}
		if len(positional) > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}
		path := positional[0]
		if *chunkSize < 0 || *delayMs < 0 {
			fmt.Fprintln(stderr, "--chunk-size and --delay must be >= 0")
			return ExitUsage
		}

		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		if *gating != "" {
			cfg.Stream.Gating = *gating
		}
		policy := stream.GatingPolicy(cfg.Stream.Gating)
		if !policy.Valid() {
			fmt.Fprintf(stderr, "Unknown gating policy %q\n", cfg.Stream.Gating)
			return ExitUsage
		}

		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		var observer stream.Observer
		var controller *live.Controller
		var proc *stream.Processor
		if decision.useLive {
			controller = live.Start(stdout, live.Options{
				NoColor:      cfg.UI.NoColor,
				TickInterval: time.Duration(cfg.UI.TickIntervalMs) * time.Millisecond,
				Cancel: func() {
					if proc != nil {
						proc.Cancel()
					}
				},
			})
			observer = controller
		} else {
			observer = newPlainObserver(stdout)
		}

		proc = stream.NewProcessor(stream.Options{Gating: policy, Observer: observer})
		replayErr := replay.Replay(path, proc, replay.Options{
			ChunkSize: *chunkSize,
			Delay:     time.Duration(*delayMs) * time.Millisecond,
		})
		finishReplay(proc, controller)
		if replayErr != nil {
			fmt.Fprintf(stderr, "%v\n", replayErr)
			return ExitError
		}

		snap := proc.Snapshot("")
		if snap.Status == stream.RunError {
			return ExitError
		}
		return ExitOK
	}
}

// finishReplay marks any still-open run abandoned and shuts the UI down.
// A truncated recording behaves like a cancelled live stream.
func finishReplay(proc *stream.Processor, controller *live.Controller) {
	snap := proc.Snapshot("")
	if snap.RunID != "" && !snap.Terminal() {
		proc.Cancel()
	}
	controller.Close()
	controller.Wait()
}
