package ilp

type ILPSolver interface {
	Solve(ILP) (Solution, error) // Returns an optimal solution of the ILP instance if feasible, else returns nil (these are valid outputs where error shall be nil)
}

const (
	Cbc         = "cbc"
	Highs       = "highs"
	Roundingsat = "roundingsat"
)

// Solvers maps every supported solver name to its constructor. An empty path falls back to the solver's name looked up in $PATH
var Solvers = map[string]func(path string) ILPSolver{
	Cbc:         NewCbcSolver,
	Highs:       NewHighsSolver,
	Roundingsat: NewRoundingsatSolver,
}
