// Package main provides the filebridge CLI entrypoint.
//
// Usage:
//
//	filebridge [global options] <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: usage, configuration or unknown endpoint
//   - 2: today's input or artifact is missing
//   - 3: the input could not be parsed or transformed
//   - 4: a directory could not be read or written
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/filebridge/cli/cmd"
	"github.com/justapithecus/filebridge/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "filebridge",
		Usage:          "Move dated files from System A to System B under per-endpoint contracts",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags:          cmd.GlobalFlags(),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.ProcessCommand(),
			cmd.RetrieveCommand(),
			cmd.ContractsCommand(),
			cmd.StatusCommand(),
			cmd.HistoryCommand(),
			cmd.ServeCommand(),
			cmd.DemoCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already exited for cli.ExitCoder errors.
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
