package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/RookieLinux/bellhopcuda/env"
	"github.com/RookieLinux/bellhopcuda/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Load an environment file and print a summary of the run it
// describes without tracing anything.
func Info(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing environment file argument")
	}

	e, err := env.Load(ctx.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Parameter", "Value"})
	table.Append([]string{"Frequency", fmt.Sprintf("%g Hz", e.Freq0)})
	table.Append([]string{"Run mode", runModeName(e.Beam.RunMode)})
	table.Append([]string{"Beam shape", beamShapeName(e.Beam.Shape)})
	table.Append([]string{"Sources", fmt.Sprintf("%d", len(e.Pos.Sz))})
	table.Append([]string{"Receiver depths", fmt.Sprintf("%d", len(e.Pos.Rz))})
	table.Append([]string{"Receiver ranges", fmt.Sprintf("%d", len(e.Pos.Rr))})
	table.Append([]string{"Launch angles", fmt.Sprintf("%d (%.2f to %.2f deg)",
		e.Angles.Nalpha(),
		e.Angles.Alpha[0]*types.RadDeg,
		e.Angles.Alpha[len(e.Angles.Alpha)-1]*types.RadDeg)})
	table.Append([]string{"Top boundary", fmt.Sprintf("%d segments", len(e.Top.Pts)-1)})
	table.Append([]string{"Bottom boundary", fmt.Sprintf("%d segments", len(e.Bot.Pts)-1)})
	table.Append([]string{"Ray box", fmt.Sprintf("%g m x %g m", e.Beam.Box[0], e.Beam.Box[1])})
	table.Append([]string{"Step size", fmt.Sprintf("%g m", e.Beam.Deltas)})
	table.Append([]string{"Max steps", fmt.Sprintf("%d", e.Beam.MaxSteps)})
	table.Render()

	logger.Noticef("environment summary\n%s", buf.String())
	return nil
}

func runModeName(mode env.RunMode) string {
	switch mode {
	case env.RunRay:
		return "ray"
	case env.RunField:
		return "field"
	case env.RunArrivals:
		return "arrivals"
	}
	return "unknown"
}

func beamShapeName(shape env.BeamShape) string {
	switch shape {
	case env.ShapeHat:
		return "hat"
	case env.ShapeGaussian:
		return "gaussian"
	}
	return "unknown"
}
