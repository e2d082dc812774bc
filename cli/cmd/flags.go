// Package cmd provides CLI commands for the filebridge binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared output flags.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables the interactive view (status, history only).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (status, history only)",
	}
)

// ReadOnlyFlags returns the output flags shared by every command. --tui is
// included everywhere so unsupported commands can reject it explicitly.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{FormatFlag, NoColorFlag, TUIFlag}
}

// GlobalFlags configure the bridge for every command. Each overrides the
// matching filebridge.yaml value.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file (default: ./filebridge.yaml if present)", EnvVars: []string{"FILEBRIDGE_CONFIG"}},
		&cli.StringFlag{Name: "contracts", Usage: "Contracts YAML file (default: built-in contracts)", EnvVars: []string{"FILEBRIDGE_CONTRACTS"}},
		&cli.StringFlag{Name: "source", Usage: "System A path (fs: directory, s3: bucket/prefix)", EnvVars: []string{"FILEBRIDGE_SOURCE"}},
		&cli.StringFlag{Name: "source-backend", Usage: "System A backend: fs, s3 or memory"},
		&cli.StringFlag{Name: "target", Usage: "System B path (fs: directory, s3: bucket/prefix)", EnvVars: []string{"FILEBRIDGE_TARGET"}},
		&cli.StringFlag{Name: "target-backend", Usage: "System B backend: fs, s3 or memory"},
		&cli.StringFlag{Name: "s3-region", Usage: "AWS region for S3 backends"},
		&cli.StringFlag{Name: "s3-endpoint", Usage: "Custom S3 endpoint (MinIO, R2)"},
		&cli.BoolFlag{Name: "s3-path-style", Usage: "Use path-style S3 addressing"},
		&cli.StringFlag{Name: "ledger", Usage: "Processing ledger directory"},
		&cli.BoolFlag{Name: "no-ledger", Usage: "Disable the processing ledger"},
		&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error", EnvVars: []string{"FILEBRIDGE_LOG_LEVEL"}},
		&cli.StringFlag{Name: "adapter", Usage: "Notification adapter: webhook or redis"},
		&cli.StringFlag{Name: "adapter-url", Usage: "Notification adapter URL"},
		&cli.StringFlag{Name: "adapter-channel", Usage: "Redis channel (redis adapter only)"},
	}
}
