package grover

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qgrover/circuit"
	"qgrover/result"
	"qgrover/sim"
)

// PhaseAncilla is the register name of the shared phase-kickback qubit.
const PhaseAncilla = "phase_ancilla"

var searchIDs atomic.Uint64

// Option configures a Search.
type Option func(*Search)

// WithLogger attaches a logger for circuit assembly diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Search) {
		if l != nil {
			s.logger = l
		}
	}
}

// Search owns the circuit of one Grover search over a Problem.
type Search struct {
	problem  Problem
	circ     *circuit.Circuit
	reg      *Registry
	ancilla  int
	built    bool
	buildErr error
	logger   *zap.Logger
}

// New allocates the phase ancilla, puts it in superposition and lets the
// problem declare its qubits. The registry is closed once Prepare returns.
func New(p Problem, opts ...Option) (*Search, error) {
	s := &Search{problem: p, circ: circuit.New(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	anc, err := s.circ.AddQuantumRegister(PhaseAncilla, 1)
	if err != nil {
		return nil, err
	}
	s.ancilla = anc.Offset
	if err := s.circ.AddGate(circuit.GateH, s.ancilla); err != nil {
		return nil, err
	}

	s.reg = newRegistry(searchIDs.Add(1), s.circ)
	if err := p.Prepare(s.reg); err != nil {
		return nil, errors.Wrap(err, "prepare")
	}
	s.reg.close()
	if s.reg.Len() == 0 {
		return nil, ErrNoRegisters
	}

	s.logger.Debug("search prepared", zap.Strings("registers", s.reg.names()))
	return s, nil
}

// BuildAll assembles the full search circuit: iterations rounds of
// search-space encoding, phase marking of target, search-space reversal and
// diffusion, then one last encoding followed by a measurement of every
// declared qubit. It can run only once per Search.
func (s *Search) BuildAll(target Qubit, iterations int) error {
	if s.built {
		return ErrAlreadyBuilt
	}
	if err := s.reg.check(target); err != nil {
		return errors.Wrap(err, "target")
	}
	if iterations < 0 {
		return errors.Wrapf(ErrNegativeIterations, "%d", iterations)
	}
	s.built = true
	s.buildErr = s.build(target, iterations)
	if s.buildErr != nil {
		return s.buildErr
	}

	s.logger.Debug("search circuit built",
		zap.String("target", target.label),
		zap.Int("iterations", iterations),
		zap.Int("gates", s.circ.Len()),
		zap.Int("depth", s.circ.Depth()),
	)
	return nil
}

func (s *Search) build(target Qubit, iterations int) error {
	g := s.gates()
	qubits := s.reg.all()

	for i := 0; i < iterations; i++ {
		g.Barrier()
		if err := s.encode(g); err != nil {
			return errors.Wrapf(err, "iteration %d", i)
		}
		g.Barrier()
		s.mark(g, target)
		g.Barrier()
		if err := s.revert(g); err != nil {
			return errors.Wrapf(err, "iteration %d", i)
		}
		g.Barrier()
		s.diffuse(g, qubits)
		if err := g.Err(); err != nil {
			return errors.Wrapf(err, "iteration %d", i)
		}
	}

	g.Barrier()
	if err := s.encode(g); err != nil {
		return errors.Wrap(err, "final encoding")
	}

	g.Barrier()
	for i, q := range qubits {
		g.fail(s.circ.AddMeasure(q.index, s.reg.cbits[i]))
	}
	return errors.Wrap(g.Err(), "measurement")
}

func (s *Search) encode(g *Gates) error {
	if err := s.problem.BuildSearchSpace(g); err != nil {
		return errors.Wrap(err, "build search space")
	}
	return errors.Wrap(g.Err(), "build search space")
}

func (s *Search) revert(g *Gates) error {
	if err := s.problem.RevertSearchSpace(g); err != nil {
		return errors.Wrap(err, "revert search space")
	}
	return errors.Wrap(g.Err(), "revert search space")
}

// mark kicks a phase back onto the ancilla where target is true.
func (s *Search) mark(g *Gates, target Qubit) {
	if g.err == nil {
		g.fail(s.circ.AddGate(circuit.GateCZ, s.ancilla, target.index))
	}
}

// diffuse reflects the register amplitudes about the mean: flip every
// qubit, Z-MCX-Z on the ancilla, flip back.
func (s *Search) diffuse(g *Gates, qubits []Qubit) {
	controls := make([]int, len(qubits))
	for i, q := range qubits {
		g.X(q)
		controls[i] = q.index
	}
	if g.err == nil {
		g.fail(s.circ.AddGate(circuit.GateZ, s.ancilla))
		g.fail(s.circ.AddMultiControlGate(s.ancilla, controls))
		g.fail(s.circ.AddGate(circuit.GateZ, s.ancilla))
	}
	for _, q := range qubits {
		g.X(q)
	}
}

func (s *Search) gates() *Gates {
	return &Gates{reg: s.reg, circ: s.circ}
}

// Simulate freezes the circuit, runs it on backend and organizes the counts
// by register name. Backend errors are returned as they come, with context.
func (s *Search) Simulate(ctx context.Context, backend sim.Backend, shots int) (*result.Table, *sim.Result, error) {
	if !s.built {
		return nil, nil, ErrNotBuilt
	}
	if s.buildErr != nil {
		return nil, nil, s.buildErr
	}
	s.circ.Freeze()

	res, err := backend.Run(ctx, s.circ, shots)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "backend %s", backend.Name())
	}
	table, err := result.Organize(res.Counts, s.Names())
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("search simulated",
		zap.String("job_id", res.JobID),
		zap.Int("shots", res.Shots),
		zap.Int("outcomes", len(table.Rows)),
	)
	return table, res, nil
}

// Marginals returns the exact probability of reading 1 on every declared
// qubit at measurement time, keyed by label.
func (s *Search) Marginals() (map[string]float64, error) {
	if !s.built {
		return nil, ErrNotBuilt
	}
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	state, err := sim.Evolve(s.circ)
	if err != nil {
		return nil, err
	}
	probs := state.GetQubitProbabilities()
	out := make(map[string]float64, len(s.reg.qubits))
	for _, q := range s.reg.qubits {
		out[q.label] = probs[q.index].Prob1
	}
	return out, nil
}

// Circuit returns the underlying circuit. Callers must not append to it.
func (s *Search) Circuit() *circuit.Circuit { return s.circ }

// Names returns the qubit labels in declaration order.
func (s *Search) Names() []string { return s.reg.names() }

// Qubits returns the declared qubits in declaration order.
func (s *Search) Qubits() []Qubit { return s.reg.all() }

// Lookup returns the qubit declared under label.
func (s *Search) Lookup(label string) (Qubit, bool) { return s.reg.Lookup(label) }

// Built reports whether BuildAll has run.
func (s *Search) Built() bool { return s.built }
