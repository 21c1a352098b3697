package ilp

import (
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
)

type partitionSolver struct{}

// NewPartitionSolver returns an in-process exhaustive solver for set-partitioning models: every equality must be
// "sum of unit terms = 1", every other constraint an upper bound with non-negative coefficients and the objective
// non-negative. It explores every combination, so it's only meant for the small instances used in tests
func NewPartitionSolver() ILPSolver {
	return &partitionSolver{}
}

func (solver *partitionSolver) Solve(instance ILP) (Solution, error) {
	equalities := lo.Filter(instance.Constraints, func(constraint Constraint, _ int) bool { return constraint.Sense == Equal })
	bounds := lo.Filter(instance.Constraints, func(constraint Constraint, _ int) bool { return constraint.Sense == LessOrEqual })

	//** Validate shape
	for _, equality := range equalities {
		if equality.Bound != 1 || lo.SomeBy(equality.Terms, func(term Term) bool { return term.Coefficient != 1 }) {
			return nil, fmt.Errorf("partition solver: unsupported equality %q", equality.Name)
		}
	}
	for _, bound := range bounds {
		if lo.SomeBy(bound.Terms, func(term Term) bool { return term.Coefficient < 0 }) {
			return nil, fmt.Errorf("partition solver: unsupported bound %q", bound.Name)
		}
	}
	if lo.SomeBy(instance.Objective, func(term Term) bool { return term.Coefficient < 0 }) {
		return nil, fmt.Errorf("partition solver: negative objective coefficients are not supported")
	}

	//** Index costs and bound usage per variable
	costs := make(map[uint64]int64)
	for _, term := range instance.Objective {
		costs[term.Variable] += term.Coefficient
	}
	usage := make(map[uint64][]Term) // Term.Variable holds the bound's position
	for position, bound := range bounds {
		for _, term := range bound.Terms {
			usage[term.Variable] = append(usage[term.Variable], Term{Variable: uint64(position), Coefficient: term.Coefficient})
		}
	}

	// Cheapest candidates first, so the first complete assignment is usually a good incumbent
	candidates := lo.Map(equalities, func(equality Constraint, _ int) []uint64 {
		variables := lo.Map(equality.Terms, func(term Term, _ int) uint64 { return term.Variable })
		slices.SortStableFunc(variables, func(a, b uint64) int { return int(costs[a] - costs[b]) })
		return variables
	})

	// Cheapest possible cost of the rows from each depth on, used as a lower bound
	remaining := make([]int64, len(candidates)+1)
	for depth := len(candidates) - 1; depth >= 0; depth-- {
		cheapest := int64(0)
		if len(candidates[depth]) > 0 {
			cheapest = costs[candidates[depth][0]]
		}
		remaining[depth] = remaining[depth+1] + cheapest
	}

	//** Branch and bound
	loads := make([]int64, len(bounds))
	chosen := make([]uint64, len(equalities))
	var best []uint64
	bestCost := int64(math.MaxInt64)

	fits := func(variable uint64) bool {
		return lo.EveryBy(usage[variable], func(use Term) bool {
			return loads[use.Variable]+use.Coefficient <= bounds[use.Variable].Bound
		})
	}
	apply := func(variable uint64, sign int64) {
		for _, use := range usage[variable] {
			loads[use.Variable] += sign * use.Coefficient
		}
	}

	var search func(depth int, cost int64) bool // Returns true once an assignment meets the lower bound, since nothing beats it
	search = func(depth int, cost int64) bool {
		if cost+remaining[depth] >= bestCost {
			return false
		}
		if depth == len(equalities) {
			best, bestCost = slices.Clone(chosen), cost
			return cost == remaining[0]
		}
		for _, variable := range candidates[depth] {
			if !fits(variable) {
				continue
			}
			apply(variable, 1)
			chosen[depth] = variable
			stop := search(depth+1, cost+costs[variable])
			apply(variable, -1)
			if stop {
				return true
			}
		}
		return false
	}
	search(0, 0)

	if best == nil {
		return nil, nil
	}
	return buildSolution(instance.Variables, lo.SliceToMap(best, func(variable uint64) (uint64, bool) { return variable, true })), nil
}

func AssertILPSolution(instance ILP, solution Solution) bool {
	// Make sure there are no duplicates nor contradictions
	literals := make(map[int64]bool)
	for _, literal := range solution {
		if literals[literal] || literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	// Check that all constraints are satisfied
	for _, constraint := range instance.Constraints {
		sum := lo.SumBy(constraint.Terms, func(term Term) int64 {
			if literals[int64(term.Variable)] {
				return term.Coefficient
			}
			return 0
		})
		if (constraint.Sense == Equal && sum != constraint.Bound) || (constraint.Sense == LessOrEqual && sum > constraint.Bound) {
			return false
		}
	}

	return true
}
