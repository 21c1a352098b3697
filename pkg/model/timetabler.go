package model

import "errors"

type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
)

// ErrUnverifiedSchedule is returned when a solver answer breaks a hard constraint
var ErrUnverifiedSchedule = errors.New("solver returned a schedule that violates the model constraints")

type Result struct {
	Status      Status   `json:"status"`
	Schedule    Schedule `json:"schedule"` // nil when infeasible
	Objective   int64    `json:"objective"`
	Variables   uint64   `json:"variables"`
	Constraints uint64   `json:"constraints"`
	Reason      string   `json:"reason,omitempty"`
}

func (result Result) Feasible() bool {
	return result.Status == StatusOptimal
}

type Timetabler interface {
	Build(
		modelInput ModelInput,
	) (result Result, err error)

	Verify(
		schedule Schedule,
		modelInput ModelInput,
	) bool
}
