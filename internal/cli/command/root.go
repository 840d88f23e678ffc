package command

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/atomstore/internal/cli/output"
	"github.com/yndnr/atomstore/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "atomctl",
		Usage:   "Inspect and serve persisted atoms",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			ResetCommand(),
			KeysCommand(),
			ServeCommand(),
			VersionCommand(),
		},
		Before: loadEnvFile,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML configuration file (default $ATOMSTORE_CONFIG)",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Load environment variables from `FILE` if it exists",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Badger directory for localStorage",
		},
		&cli.StringFlag{
			Name:  "storage",
			Usage: "Storage preset: localStorage or sessionStorage",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// loadEnvFile loads --env-file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(c *cli.Context) error {
	path := c.String("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
