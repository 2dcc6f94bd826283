package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"flowtap/internal/store"
)

func runWorkflows(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
		if len(positional) == 0 {
			fmt.Fprintln(stderr, "Missing subcommand: list, duplicate or delete")
			return ExitUsage
		}
		sub := positional[0]

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
		ctx := context.Background()

		switch sub {
		case "list":
			if len(positional) > 1 {
				fmt.Fprintln(stderr, "Too many arguments")
				return ExitUsage
			}
			items, err := store.ListWorkflows(ctx, db)
			if err != nil {
				fmt.Fprintf(stderr, "List failed: %v\n", err)
				return ExitError
			}
			if len(items) == 0 {
				fmt.Fprintln(stdout, "No workflows stored")
				return ExitOK
			}
			for _, item := range items {
				fmt.Fprintf(stdout, "%s  %s", item.ID, item.Name)
				if item.Description != "" {
					fmt.Fprintf(stdout, "  (%s)", item.Description)
				}
				fmt.Fprintln(stdout)
			}
			return ExitOK
		case "duplicate":
			if len(positional) < 2 {
				fmt.Fprintln(stderr, "Missing <workflow-id>")
				return ExitUsage
			}
			id := positional[1]
			dup, err := store.DuplicateWorkflow(ctx, db, id)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(stderr, "Workflow %s not found\n", id)
				return ExitError
			}
			if err != nil {
				fmt.Fprintf(stderr, "Duplicate failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Created %s  %s\n", dup.ID, dup.Name)
			return ExitOK
		case "delete":
			if len(positional) < 2 {
				fmt.Fprintln(stderr, "Missing <workflow-id>")
				return ExitUsage
			}
			id := positional[1]
			err := store.DeleteWorkflow(ctx, db, id)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(stderr, "Workflow %s not found\n", id)
				return ExitError
			}
			if err != nil {
				fmt.Fprintf(stderr, "Delete failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Deleted %s\n", id)
			return ExitOK
		default:
			fmt.Fprintf(stderr, "Unknown subcommand: %s\n", sub)
			return ExitUsage
		}
	}
}
