package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dexterpante/scheduler/internal/pipeline"
	"github.com/dexterpante/scheduler/pkg/model"
)

func runSolve(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg, baseLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := solve(cmd.Context(), a.pipeline, args[0])
	if errors.Is(err, model.ErrUnverifiedSchedule) {
		return exitCode(exitUnverified)
	} else if err != nil {
		return err
	}

	if err := writeRun(cmd.OutOrStdout(), solveOut, run); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Variables: %v\n", run.Result.Variables)
	fmt.Fprintf(cmd.ErrOrStderr(), "Constraints: %v\n", run.Result.Constraints)
	if !run.Result.Feasible() {
		return exitCode(exitInfeasible)
	}
	return exitCode(exitOptimal)
}

func solve(ctx context.Context, p *pipeline.Pipeline, file string) (*pipeline.Run, error) {
	input, err := model.InputFromFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot parse input file: %w", err)
	}

	run, err := p.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("an error occurred during timetable construction: %w", err)
	}
	return run, nil
}

// writeRun writes the run into file, or into stdout when file is empty
func writeRun(stdout io.Writer, file string, run *pipeline.Run) error {
	runJson, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("an error occurred while building output json: %w", err)
	}

	if file == "" {
		_, err = fmt.Fprintln(stdout, string(runJson))
		return err
	}
	if err := os.WriteFile(file, runJson, 0666); err != nil {
		return fmt.Errorf("an error occurred while writing to the output file: %w", err)
	}
	return nil
}
