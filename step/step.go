package step

import (
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
)

// Step is the contract every tagged step implements (§4.2): given the
// table space produced by the prior step and the workflow-wide settings,
// produce a new table space and any sink plans to append to the
// workflow's accumulated list.
type Step interface {
	// Execute runs the step, returning the successor table space and any
	// sink plans this step emitted. It performs no I/O and evaluates no
	// expression directly — Execute only builds and wires plan.Node values
	// (§8 laziness property); the error returns it can produce are limited
	// to structural ones (missing table, invalid parameters, §7.2).
	Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error)

	// Tag is the step's wire discriminator, used in error messages and
	// driver logging.
	Tag() string
}
