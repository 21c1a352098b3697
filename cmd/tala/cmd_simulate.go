package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dexterpante/scheduler/internal/pipeline"
	"github.com/dexterpante/scheduler/pkg/readiness"
)

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, baseLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		if _, err := solve(cmd.Context(), a.pipeline, from); err != nil {
			return err
		}
	}

	request, err := simulationRequest(cmd.Flags())
	if err != nil {
		return err
	}

	projection, err := a.pipeline.Simulate(request)
	if err != nil {
		return err
	}
	printProjection(cmd.OutOrStdout(), projection)
	return nil
}

func addSimulationFlags(flags *pflag.FlagSet) {
	flags.Float64("baseline", 0, "Baseline achievement score (0-100)")
	flags.Float64("class-size", 0, "Average learners per class")
	flags.Float64("pct-non-specialist", 0, "Share of classes taught by non-specialists (0-100)")
	flags.Float64("pct-overload", 0, "Share of overloaded teachers (0-100)")
	flags.Int("shifts", 0, "Number of daily shifts (1-3)")
	flags.String("from", "", "Model input to solve first; its diagnostics seed the parameters left unset")
}

// simulationRequest overrides only the parameters set on the command line
func simulationRequest(flags *pflag.FlagSet) (pipeline.SimulationRequest, error) {
	var request pipeline.SimulationRequest

	floats := map[string]**float64{
		"baseline":           &request.Baseline,
		"class-size":         &request.ClassSize,
		"pct-non-specialist": &request.NonSpecialist,
		"pct-overload":       &request.Overload,
	}
	for name, target := range floats {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetFloat64(name)
		if err != nil {
			return request, err
		}
		*target = &value
	}

	if flags.Changed("shifts") {
		shifts, err := flags.GetInt("shifts")
		if err != nil {
			return request, err
		}
		request.Shifts = &shifts
	}
	return request, nil
}

func printProjection(w io.Writer, projection readiness.Projection) {
	for _, line := range projection.Narrative {
		fmt.Fprintln(w, line)
	}
}
