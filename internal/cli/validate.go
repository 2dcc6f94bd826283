package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"

	"flowtap/internal/engine"
	"flowtap/internal/workflow"
)

// remoteValidate is a test seam for engine-side validation.
var remoteValidate = func(ctx context.Context, client *engine.Client, def workflow.Definition) (workflow.Validation, error) {
	return client.Validate(ctx, def)
}

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .flowtap.yml)")
		remote := fs.Bool("remote", false, "Also validate against the engine")
		engineURL := fs.String("engine", "", "Engine base URL override")
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

		def, err := readDefinition(path)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}

		validation := workflow.NewGraph(def).Validate()
		printValidation(stdout, "Local", validation)
		if !validation.Valid {
			return ExitError
		}

		if *remote {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
				return ExitError
			}
			if *engineURL != "" {
				cfg.Engine.BaseURL = *engineURL
			}
			client, err := engine.NewClient(cfg.Engine.BaseURL, http.DefaultClient)
			if err != nil {
				fmt.Fprintf(stderr, "Engine client: %v\n", err)
				return ExitError
			}
			remoteResult, err := remoteValidate(context.Background(), client, def)
			if err != nil {
				fmt.Fprintf(stderr, "Remote validation failed: %v\n", err)
				return ExitError
			}
			printValidation(stdout, "Engine", remoteResult)
			if !remoteResult.Valid {
				return ExitError
			}
		}
		return ExitOK
	}
}

// printValidation writes one validation result with its issues.
func printValidation(w io.Writer, label string, v workflow.Validation) {
	if v.Valid {
		fmt.Fprintf(w, "%s: OK (%d nodes, %d edges)\n", label, v.NodeCount, v.EdgeCount)
		return
	}
	fmt.Fprintf(w, "%s: invalid\n", label)
	for _, issue := range v.Errors {
		fmt.Fprintf(w, "  %s\n", issue)
	}
}
