package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/log"
	"github.com/RookieLinux/bellhopcuda/runner"
	"github.com/RookieLinux/bellhopcuda/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Trace a full run from a JSON environment file: every (source, launch
// angle) job through the ray state machine into the accumulator the
// run mode selects. Result writing is handled by downstream tooling;
// this command reports run statistics and an output summary.
func Run(ctx *cli.Context) error {
	setupLogging(ctx)

	if path := ctx.String("print-file"); path != "" {
		sink, err := os.Create(path)
		if err != nil {
			return err
		}
		defer sink.Close()
		log.SetSink(sink)
	}

	if ctx.NArg() != 1 {
		return errors.New("missing environment file argument")
	}

	e, err := env.Load(ctx.Args().First())
	if err != nil {
		return err
	}

	if mode := ctx.String("mode"); mode != "" {
		switch mode {
		case "ray":
			e.Beam.RunMode = env.RunRay
		case "field":
			e.Beam.RunMode = env.RunField
		case "arrivals":
			e.Beam.RunMode = env.RunArrivals
		default:
			return fmt.Errorf("unknown run mode %q", mode)
		}
	}
	if workers := ctx.Int("workers"); workers > 0 {
		e.Workers = workers
	}
	if mem := ctx.Int64("arrivals-mem"); mem > 0 {
		e.ArrMemory = mem << 20
	}

	r, err := runner.New(e, tracer.NewPerfectScheduler(), runner.Options{})
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Run(); err != nil {
		return err
	}

	displayRunStats(r.Stats())
	displayOutputSummary(e, r)
	return nil
}

func displayRunStats(stats runner.RunStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Jobs", "% of run", "Trace time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.NumJobs),
			fmt.Sprintf("%02.1f %%", stat.JobPercent),
			fmt.Sprintf("%s", stat.TraceTime),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%s", stats.RunTime)})

	table.Render()
	logger.Noticef("run statistics\n%s", buf.String())
}

func displayOutputSummary(e *env.Env, r *runner.Runner) {
	switch e.Beam.RunMode {
	case env.RunRay:
		var samples int
		for _, trajectory := range r.Rays {
			samples += len(trajectory)
		}
		logger.Noticef("traced %d rays (%d samples)", len(r.Rays), samples)
	case env.RunField:
		logger.Noticef("pressure field %dx%dx%d, peak magnitude %g",
			r.Pressure.NSz, r.Pressure.NRz, r.Pressure.NRr, r.Pressure.PeakMagnitude())
	case env.RunArrivals:
		nCells := len(e.Pos.Sz) * len(e.Pos.Rz) * len(e.Pos.Rr)
		var total int32
		for cell := 0; cell < nCells; cell++ {
			total += r.Arrivals.Count(cell)
		}
		logger.Noticef("recorded %d arrivals across %d cells (max %d per cell)",
			total, nCells, r.Arrivals.MaxNArr())
	}
}
