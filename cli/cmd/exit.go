package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/filebridge/pipeline"
)

// Exit codes.
const (
	exitOK           = 0
	exitUsage        = 1 // unknown endpoint, bad flags, config errors
	exitInputMissing = 2 // input or artifact not found
	exitProcessing   = 3
	exitIO           = 4
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pipeline.ErrUnknownEndpoint):
		return exitUsage
	case errors.Is(err, pipeline.ErrInputNotFound), errors.Is(err, pipeline.ErrArtifactNotFound):
		return exitInputMissing
	case errors.Is(err, pipeline.ErrProcessing):
		return exitProcessing
	case errors.Is(err, pipeline.ErrIO):
		return exitIO
	default:
		return exitUsage
	}
}

// exitErr wraps err for urfave/cli with its exit code.
func exitErr(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err.Error(), ExitCode(err))
}

func requireEndpoint(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("exactly one endpoint argument is required", exitUsage)
	}
	return c.Args().First(), nil
}

func rejectTUI(c *cli.Context, command string) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for "+command+" command", exitUsage)
	}
	return nil
}
