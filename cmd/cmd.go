// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// targetArgs is the positional user code shared by archive and tui.
func targetArgs() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name:      "target",
			UsageText: "user code of the account to archive",
		},
	}
}

// runFlags are the crawl and download flags shared by archive and tui.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cookie",
			Usage:   "Session cookie header value",
			Sources: cli.EnvVars("CFX_COOKIE"),
		},
		&cli.StringFlag{
			Name:    "xsrf",
			Usage:   "X-Xsrf-Token header value",
			Sources: cli.EnvVars("CFX_XSRF_TOKEN"),
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "First timeline page to fetch",
			Value: 0,
		},
		&cli.IntFlag{
			Name:  "pages",
			Usage: "Maximum number of pages to fetch (default: every page)",
		},
		&cli.StringSliceFlag{
			Name:    "extensions",
			Aliases: []string{"e"},
			Usage:   "Extensions to download, matched exactly (default: archive.extensions)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (default: the user code)",
		},
		&cli.BoolFlag{
			Name:  "no-record",
			Usage: "Do not write this run to the archive ledger",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// archiveCommand downloads every wanted asset of an account.
func archiveCommand(r *Runner) *cli.Command {
	flags := append(runFlags(),
		&cli.StringFlag{
			Name:    "manifest",
			Aliases: []string{"m"},
			Usage:   "Write outcomes to a .json, .csv, .md or .txt manifest",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the run summary as JSON",
		},
	)

	return &cli.Command{
		Name:      "archive",
		Aliases:   []string{"dl"},
		Usage:     "Crawl an account's timeline and download its media",
		Arguments: targetArgs(),
		Flags:     flags,
		Action:    r.Archive,
	}
}

// setupCommand handles setup operations for config, credentials and the database.
func setupCommand(r *Runner) *cli.Command {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		}
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:  "credentials",
				Usage: "Store session credentials from a browser cURL export",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupCredentials,
			},
			{
				Name:   "database",
				Usage:  "Initialize the archive ledger and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand lists recorded runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded archive runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "Only list runs for this user code",
			},
			&cli.StringFlag{
				Name:  "failed",
				Usage: "List the failed references of a run (sequence number or ID)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for an interactive archive run.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Archive an account with a live progress view",
		Arguments: targetArgs(),
		Flags:     runFlags(),
		Action:    r.TUI,
	}
}
