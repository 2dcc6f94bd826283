package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"flowtap/internal/store"
)

// runClear builds the handler for the clear command.
func runClear(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .flowtap.yml)")
		positional, err := parseFlags(fs, args)
		if err != nil {
			return ExitUsage
		}
		if len(positional) > 0 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}

		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		db, err := store.Open(cfg.Database.Path)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}
		defer db.Close()

		if err := store.ClearHistory(context.Background(), db); err != nil {
			fmt.Fprintf(stderr, "Clear failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintln(stdout, "Run history cleared")
		return ExitOK
	}
}
