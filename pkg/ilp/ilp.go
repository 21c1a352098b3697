package ilp

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Sense is the relation between the left-hand side of a constraint and its bound
type Sense int

const (
	Equal Sense = iota
	LessOrEqual
)

func (sense Sense) String() string {
	switch sense {
	case Equal:
		return "="
	case LessOrEqual:
		return "<="
	}
	return fmt.Sprintf("Sense(%d)", int(sense))
}

type Term struct {
	Variable    uint64
	Coefficient int64
}

type Constraint struct {
	Name  string // Human readable origin of the constraint, never written to the solver files
	Terms []Term
	Sense Sense
	Bound int64
}

// ILP is a minimization problem over binary variables 1..Variables
type ILP struct {
	Variables   uint64
	Objective   []Term
	Constraints []Constraint
}

// Solution holds one signed literal per variable: +v when variable v takes value 1 and -v when it takes value 0
type Solution []int64

const termsPerLine = 10

// Transforms the ILP into the CPLEX-LP text format understood by CBC, HiGHS, GLPK and SCIP
func (ilp ILP) ToLP() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "\\ variables: %d constraints: %d\n", ilp.Variables, len(ilp.Constraints))

	builder.WriteString("Minimize\n obj:")
	objective := lo.Filter(ilp.Objective, func(term Term, _ int) bool { return term.Coefficient != 0 })
	if len(objective) == 0 && ilp.Variables > 0 {
		objective = []Term{{Variable: 1, Coefficient: 0}} // LP readers reject an empty objective
	}
	writeLPTerms(&builder, objective)
	builder.WriteString("\n")

	builder.WriteString("Subject To\n")
	for i, constraint := range ilp.Constraints {
		fmt.Fprintf(&builder, " c%d:", i+1)
		writeLPTerms(&builder, constraint.Terms)
		fmt.Fprintf(&builder, " %v %d\n", constraint.Sense, constraint.Bound)
	}

	builder.WriteString("Binary\n")
	for variable := uint64(1); variable <= ilp.Variables; variable++ {
		fmt.Fprintf(&builder, " x%d\n", variable)
	}
	builder.WriteString("End\n")
	return builder.String()
}

// Transforms the ILP into the OPB pseudo-boolean format. OPB has no "<=" relation, so upper bounds are negated into ">=" constraints
func (ilp ILP) ToOPB() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "* #variable= %d #constraint= %d\n", ilp.Variables, len(ilp.Constraints))

	objective := lo.Filter(ilp.Objective, func(term Term, _ int) bool { return term.Coefficient != 0 })
	if len(objective) > 0 {
		builder.WriteString("min:")
		writeOPBTerms(&builder, objective, 1)
		builder.WriteString(" ;\n")
	}

	for _, constraint := range ilp.Constraints {
		switch constraint.Sense {
		case Equal:
			writeOPBTerms(&builder, constraint.Terms, 1)
			fmt.Fprintf(&builder, " = %d ;\n", constraint.Bound)
		case LessOrEqual:
			writeOPBTerms(&builder, constraint.Terms, -1)
			fmt.Fprintf(&builder, " >= %d ;\n", -constraint.Bound)
		}
	}
	return builder.String()
}

// Computes the objective value reached by a solution
func (ilp ILP) Evaluate(solution Solution) int64 {
	positives := solution.Positives()
	return lo.SumBy(ilp.Objective, func(term Term) int64 {
		if positives[term.Variable] {
			return term.Coefficient
		}
		return 0
	})
}

// Returns the set of variables assigned to 1
func (solution Solution) Positives() map[uint64]bool {
	positives := make(map[uint64]bool, len(solution))
	for _, literal := range solution {
		if literal > 0 {
			positives[uint64(literal)] = true
		}
	}
	return positives
}

func writeLPTerms(builder *strings.Builder, terms []Term) {
	for i, term := range terms {
		if i > 0 && i%termsPerLine == 0 {
			builder.WriteString("\n  ") // Continuation lines keep readers with line-length limits happy
		}
		sign := "+"
		coefficient := term.Coefficient
		if coefficient < 0 {
			sign, coefficient = "-", -coefficient
		}
		fmt.Fprintf(builder, " %s %d x%d", sign, coefficient, term.Variable)
	}
}

func writeOPBTerms(builder *strings.Builder, terms []Term, factor int64) {
	for _, term := range terms {
		fmt.Fprintf(builder, " %+d x%d", factor*term.Coefficient, term.Variable)
	}
}
