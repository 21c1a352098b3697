package ilp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type highsSolver struct {
	path string
}

func NewHighsSolver(path string) ILPSolver {
	if path == "" {
		path = Highs
	}
	return &highsSolver{path: path}
}

func (solver *highsSolver) Solve(instance ILP) (Solution, error) {
	lp := instance.ToLP() // Transform ILP into CPLEX-LP string format

	inputFile, err := writeTempFile("model-*.lp", lp)
	if err != nil {
		return nil, err
	}
	defer os.Remove(inputFile) // Ensure the file is removed after execution

	outputFile, err := writeTempFile("highs_output-*.sol", "")
	if err != nil {
		return nil, err
	}
	defer os.Remove(outputFile) // Ensure the file is removed after execution

	cmd := exec.Command(solver.path, "--model_file", inputFile, "--solution_file", outputFile)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("an error occurred during highs execution: %w : %v", err, stderr.String())
	}

	output, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	return parseHighsSolution(string(output), instance.Variables)
}

// HiGHS writes "Model status" followed by the status on the next line, then a "# Columns <n>" header and n lines of "<name> <value>"
func parseHighsSolution(solverOutput string, variables uint64) (Solution, error) {
	lines := strings.Split(solverOutput, "\n")

	status := ""
	for i, line := range lines {
		if strings.TrimSpace(line) == "Model status" && i+1 < len(lines) {
			status = strings.TrimSpace(lines[i+1])
			break
		}
	}

	switch {
	case status == "Infeasible":
		return nil, nil
	case status != "Optimal":
		return nil, fmt.Errorf("highs did not prove optimality: %q", status)
	}

	columnsHeader := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "# Columns") {
			columnsHeader = i
			break
		}
	}
	if columnsHeader < 0 {
		return nil, fmt.Errorf("highs output carries no column values")
	}

	columns, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lines[columnsHeader], "# Columns")))
	if err != nil {
		return nil, fmt.Errorf("invalid columns header in highs output: %w", err)
	}

	positives := make(map[uint64]bool)
	for _, line := range lines[columnsHeader+1 : min(columnsHeader+1+columns, len(lines))] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("invalid column line in highs output: %q", line)
		}

		variable, err := parseVariableName(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid column in highs output: %w", err)
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in highs output: %w", err)
		}
		if value > 0.5 {
			positives[variable] = true
		}
	}
	return buildSolution(variables, positives), nil
}
