package ilp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type cbcSolver struct {
	path string
}

func NewCbcSolver(path string) ILPSolver {
	if path == "" {
		path = Cbc
	}
	return &cbcSolver{path: path}
}

func (solver *cbcSolver) Solve(instance ILP) (Solution, error) {
	lp := instance.ToLP() // Transform ILP into CPLEX-LP string format

	inputFile, err := writeTempFile("model-*.lp", lp)
	if err != nil {
		return nil, err
	}
	defer os.Remove(inputFile) // Ensure the file is removed after execution

	outputFile, err := writeTempFile("cbc_output-*.txt", "")
	if err != nil {
		return nil, err
	}
	defer os.Remove(outputFile) // Ensure the file is removed after execution

	cmd := exec.Command(solver.path, inputFile, "solve", "solu", outputFile)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("an error occurred during cbc execution: %w : %v", err, stderr.String())
	}

	output, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	return parseCbcSolution(string(output), instance.Variables)
}

// CBC's solution file starts with a status line ("Optimal - objective value 3.00000000") followed by one row per
// non-zero column: "<index> <name> <value> <reduced cost>", optionally prefixed by "**" when the value breaks a bound
func parseCbcSolution(solverOutput string, variables uint64) (Solution, error) {
	lines := strings.Split(solverOutput, "\n")
	header := strings.ToLower(strings.TrimSpace(lines[0]))

	if strings.Contains(header, "infeasible") {
		return nil, nil
	} else if !strings.HasPrefix(header, "optimal") {
		return nil, fmt.Errorf("cbc did not prove optimality: %q", strings.TrimSpace(lines[0]))
	}

	positives := make(map[uint64]bool)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}

		variable, err := parseVariableName(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid row in cbc output: %w", err)
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in cbc output: %w", err)
		}
		if value > 0.5 {
			positives[variable] = true
		}
	}
	return buildSolution(variables, positives), nil
}
