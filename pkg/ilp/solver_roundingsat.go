package ilp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"slices"
)

type roundingsatSolver struct {
	path string
}

func NewRoundingsatSolver(path string) ILPSolver {
	if path == "" {
		path = Roundingsat
	}
	return &roundingsatSolver{path: path}
}

func (solver *roundingsatSolver) Solve(instance ILP) (Solution, error) {
	opb := instance.ToOPB() // Transform ILP into OPB string format

	inputFile, err := writeTempFile("model-*.opb", opb)
	if err != nil {
		return nil, err
	}
	defer os.Remove(inputFile) // Ensure the file is removed after execution

	cmd := exec.Command(solver.path, "--print-sol=1", inputFile)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Exit-code of 10 stands for satisfiable, 20 for unsatisfiable and 30 for optimum found
	err = cmd.Run()
	if err != nil && !slices.Contains([]int{10, 20, 30}, cmd.ProcessState.ExitCode()) {
		return nil, fmt.Errorf("an error occurred during roundingsat execution: %w : %v", err, stderr.String())
	}

	return parseRoundingsatSolution(stdOut.String(), instance.Variables)
}

func parseRoundingsatSolution(solverOutput string, variables uint64) (Solution, error) {
	status, ok := statusLine(solverOutput)
	if !ok {
		return nil, fmt.Errorf("roundingsat output carries no status line")
	}

	switch status {
	case "UNSATISFIABLE":
		return nil, nil
	case "OPTIMUM FOUND":
		return parseValueLines(solverOutput, variables)
	case "SATISFIABLE":
		// Without an objective roundingsat stops at the first model, which is optimal by definition
		return parseValueLines(solverOutput, variables)
	}
	return nil, fmt.Errorf("roundingsat did not prove optimality: %q", status)
}
