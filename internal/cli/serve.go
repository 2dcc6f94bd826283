package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"flowtap/internal/reportserver"
	"flowtap/internal/store"
)

// serveHistory is a test seam for running the history server.
var serveHistory = reportserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .flowtap.yml)")
		addr := fs.String("addr", "", "Address to listen on")
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
		if *addr != "" {
			cfg.Server.Addr = *addr
		}

		db, err := store.Open(cfg.Database.Path)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintf(stdout, "Serving run history at http://%s\n", cfg.Server.Addr)
		if err := serveHistory(ctx, reportserver.Config{
			Addr:   cfg.Server.Addr,
			DB:     db,
			DBPath: cfg.Database.Path,
		}); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
