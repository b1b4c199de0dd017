package main

import (
	"os"

	"github.com/RookieLinux/bellhopcuda/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "bellhop"
	app.Usage = "trace underwater acoustic rays and accumulate pressure fields or arrivals"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "trace the fan of rays described by an environment file",
			Description: `
Load a JSON environment file and trace every (source, launch angle) pair
through the sound speed profile between the top and bottom boundaries.

Depending on the run mode the output is the set of ray trajectories, a
complex pressure field on the receiver grid, or a per-receiver table of
ray arrivals.`,
			ArgsUsage: "environment_file.json",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "mode",
					Usage: "override the run mode (ray, field or arrivals)",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of cpu workers; defaults to the number of cpus",
				},
				cli.Int64Flag{
					Name:  "arrivals-mem",
					Usage: "memory budget for the arrival table in MB",
				},
				cli.StringFlag{
					Name:  "print-file",
					Usage: "write the run log to this file instead of stdout",
				},
			},
			Action: cmd.Run,
		},
		{
			Name:      "info",
			Usage:     "print a summary of an environment file",
			ArgsUsage: "environment_file.json",
			Action:    cmd.Info,
		},
	}

	app.Run(os.Args)
}
