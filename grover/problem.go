// Package grover assembles Grover amplitude-amplification circuits for
// user-defined search problems.
//
// A search problem implements Problem. Prepare declares one named qubit per
// problem variable; BuildSearchSpace encodes the candidate space and its
// constraints with the logic helpers on Gates; RevertSearchSpace applies the
// exact inverse. Search then sequences oracle marking and diffusion around
// those hooks:
//
//	s, err := grover.New(problem)
//	if err != nil { ... }
//	if err := s.BuildAll(problem.Target(), 1); err != nil { ... }
//	table, res, err := s.Simulate(ctx, sim.NewStatevector(), sim.DefaultShots)
package grover

import "github.com/pkg/errors"

var (
	ErrUnimplemented      = errors.New("operation not implemented")
	ErrNoRegisters        = errors.New("problem declared no qubit registers")
	ErrInvalidLabel       = errors.New("invalid qubit label")
	ErrDuplicateLabel     = errors.New("qubit label already declared")
	ErrRegistryClosed     = errors.New("qubit registry is closed")
	ErrForeignQubit       = errors.New("qubit does not belong to this search")
	ErrNoOperands         = errors.New("logic gate needs at least one operand")
	ErrTargetIsOperand    = errors.New("target qubit is also an operand")
	ErrNegativeIterations = errors.New("iteration count must not be negative")
	ErrAlreadyBuilt       = errors.New("search circuit already built")
	ErrNotBuilt           = errors.New("search circuit not built")
)

// Problem is a concrete search problem.
type Problem interface {
	// Prepare declares every named qubit through r.CreateQubit. It runs once,
	// before any gate is issued.
	Prepare(r *Registry) error

	// BuildSearchSpace encodes the search space and its constraints. It must
	// not measure.
	BuildSearchSpace(g *Gates) error

	// RevertSearchSpace applies the exact inverse of BuildSearchSpace.
	RevertSearchSpace(g *Gates) error
}

// Unimplemented can be embedded in a problem type. Every hook it provides
// fails with ErrUnimplemented, so a problem that forgets to override one is
// rejected instead of silently producing an empty circuit.
type Unimplemented struct{}

func (Unimplemented) Prepare(*Registry) error {
	return errors.Wrap(ErrUnimplemented, "Prepare")
}

func (Unimplemented) BuildSearchSpace(*Gates) error {
	return errors.Wrap(ErrUnimplemented, "BuildSearchSpace")
}

func (Unimplemented) RevertSearchSpace(*Gates) error {
	return errors.Wrap(ErrUnimplemented, "RevertSearchSpace")
}
