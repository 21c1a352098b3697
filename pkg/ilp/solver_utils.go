package ilp

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Writes content into a fresh temporary file and returns its name; the caller owns the removal
func writeTempFile(pattern, content string) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}
	return file.Name(), nil
}

// Builds a full solution (one literal per variable) out of the set of variables assigned to 1
func buildSolution(variables uint64, positives map[uint64]bool) Solution {
	solution := make(Solution, 0, variables)
	for variable := uint64(1); variable <= variables; variable++ {
		if positives[variable] {
			solution = append(solution, int64(variable))
		} else {
			solution = append(solution, -int64(variable))
		}
	}
	return solution
}

// Parses a variable name of the form "x<index>" as written by ToLP and ToOPB
func parseVariableName(name string) (uint64, error) {
	if !strings.HasPrefix(name, "x") {
		return 0, fmt.Errorf("unexpected variable name %q", name)
	}
	variable, err := strconv.ParseUint(name[1:], 10, 64)
	if err != nil || variable == 0 {
		return 0, fmt.Errorf("unexpected variable name %q", name)
	}
	return variable, nil
}

// Parses the "v" lines of a competition-style solver output ("v x1 -x2 x3 ...")
func parseValueLines(solverOutput string, variables uint64) (Solution, error) {
	literals := lo.Reduce(
		lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
			return len(line) > 1 && line[0] == 'v' && line[1] == ' '
		}),
		func(literals []string, line string, _ int) []string {
			return append(literals, strings.Fields(line[2:])...)
		},
		[]string{},
	)

	positives := make(map[uint64]bool)
	for _, literal := range literals {
		if strings.HasPrefix(literal, "-") {
			if _, err := parseVariableName(literal[1:]); err != nil {
				return nil, fmt.Errorf("invalid literal in solver output: %w", err)
			}
			continue
		}
		variable, err := parseVariableName(literal)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		positives[variable] = true
	}
	return buildSolution(variables, positives), nil
}

// Returns the status line of a competition-style solver output (the text after "s ")
func statusLine(solverOutput string) (string, bool) {
	line, ok := lo.Find(strings.Split(solverOutput, "\n"), func(line string) bool {
		return strings.HasPrefix(line, "s ")
	})
	if !ok {
		return "", false
	}
	return strings.TrimSpace(line[2:]), true
}
