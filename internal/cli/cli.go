// Package cli implements the flowtap command line interface.
package cli

import (
	"flag"
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

// parseFlags parses a command's flags, allowing them before or after the
// positional arguments. Stdlib parsing stops at the first positional, so
// parsing resumes after each one. Returns the positionals in order.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  flowtap <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"flowtap <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("run", "Execute a workflow against the engine", []string{
		"flowtap run <workflow.json> [--input key=value]... [--record <file>] [--ui auto|live|plain]",
	}, runRun),
	command("replay", "Replay a recorded execution stream", []string{
		"flowtap replay <recording.sse> [--chunk-size <bytes>] [--delay <ms>] [--ui auto|live|plain]",
	}, runReplay),
	command("validate", "Validate a workflow definition", []string{
		"flowtap validate <workflow.json> [--remote]",
	}, runValidate),
	command("workflows", "Manage stored workflows", []string{
		"flowtap workflows list",
		"flowtap workflows duplicate <workflow-id>",
		"flowtap workflows delete <workflow-id>",
	}, runWorkflows),
	command("serve", "Serve archived run history over HTTP", []string{
		"flowtap serve [--addr <host:port>]",
	}, runServe),
	command("clear", "Delete all archived run history", []string{
		"flowtap clear",
	}, runClear),
}
