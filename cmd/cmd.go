// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const defaultConfigPath = "main.toml"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// libraryFlags are shared by every command that resolves destinations.
func libraryFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:  "encoders-dir",
			Usage: "Directory holding <conversion_format>.toml encoder profiles (overrides encoders_dir)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log at debug level",
		},
	}
}

// syncCommand copies or transcodes every tagged file of a directory into the library
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Aliases:   []string{"convert"},
		Usage:     "Copy or transcode a music directory into the library",
		ArgsUsage: "<music directory>",
		Flags: append(libraryFlags(),
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent file operations, 0 uses the number of CPUs (overrides workers)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Deadline for each copy or encoder run, 0 disables it (overrides timeout)",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write per-file outcomes to this path",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: json, csv or txt (default: from the report extension)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show an interactive progress screen when attached to a terminal",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Start syncing without confirmation in the progress screen",
			},
		),
		Action: r.Sync,
	}
}

// previewCommand lists planned destinations without touching the filesystem
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Show where each file would be written, without writing anything",
		ArgsUsage: "<music directory>",
		Flags: append(libraryFlags(),
			&cli.BoolFlag{
				Name:    "table",
				Aliases: []string{"t"},
				Usage:   "Render the planned files as a table",
			},
		),
		Action: r.Preview,
	}
}

// initCommand writes starter configuration files
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "init",
		Aliases: []string{"setup"},
		Usage:   "Create main.toml and the encoder profile it selects",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "encoders-dir",
				Usage: "Directory to write the encoder profile into (default: encoders_dir from the config)",
			},
		},
		Action: r.Init,
	}
}

// historyCommand inspects the sync history database
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past sync runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to list",
				Value:   20,
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show the failed files of a run",
				ArgsUsage: "<run id or number>",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Show every file, not only failures",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
