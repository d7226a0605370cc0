package grover

import (
	"github.com/pkg/errors"

	"qgrover/circuit"
)

// Gates appends gates on declared qubits to the search circuit. The first
// failure is kept and every later call becomes a no-op, so hook code can
// issue a sequence of gates and return Err once.
type Gates struct {
	reg  *Registry
	circ *circuit.Circuit
	err  error
}

// Err returns the first error encountered, if any.
func (g *Gates) Err() error { return g.err }

func (g *Gates) fail(err error) {
	if g.err == nil && err != nil {
		g.err = err
	}
}

// indices resolves handles to circuit qubit indices.
func (g *Gates) indices(qs ...Qubit) ([]int, bool) {
	if g.err != nil {
		return nil, false
	}
	out := make([]int, len(qs))
	for i, q := range qs {
		if err := g.reg.check(q); err != nil {
			g.fail(err)
			return nil, false
		}
		out[i] = q.index
	}
	return out, true
}

// H adds a Hadamard gate.
func (g *Gates) H(q Qubit) {
	if idx, ok := g.indices(q); ok {
		g.fail(g.circ.AddGate(circuit.GateH, idx[0]))
	}
}

// X adds a Pauli-X gate.
func (g *Gates) X(q Qubit) {
	if idx, ok := g.indices(q); ok {
		g.fail(g.circ.AddGate(circuit.GateX, idx[0]))
	}
}

// Z adds a Pauli-Z gate.
func (g *Gates) Z(q Qubit) {
	if idx, ok := g.indices(q); ok {
		g.fail(g.circ.AddGate(circuit.GateZ, idx[0]))
	}
}

// CZ adds a controlled-Z gate.
func (g *Gates) CZ(ctrl, target Qubit) {
	if idx, ok := g.indices(ctrl, target); ok {
		g.fail(g.circ.AddGate(circuit.GateCZ, idx[1], idx[0]))
	}
}

// MCX adds a multi-controlled X on target.
func (g *Gates) MCX(ctrls []Qubit, target Qubit) {
	idx, ok := g.indices(append(append([]Qubit(nil), ctrls...), target)...)
	if !ok {
		return
	}
	g.fail(g.circ.AddMultiControlGate(idx[len(idx)-1], idx[:len(idx)-1]))
}

// Barrier adds a barrier across the whole circuit.
func (g *Gates) Barrier() {
	if g.err == nil {
		g.fail(g.circ.AddBarrier())
	}
}

// Not flips q. It is its own inverse.
func (g *Gates) Not(q Qubit) {
	g.X(q)
}

// And flips target when every operand is true, i.e. target ^= AND(operands).
// Target should start false to hold the conjunction.
func (g *Gates) And(operands []Qubit, target Qubit) {
	if !g.checkLogic(operands, target) {
		return
	}
	g.MCX(operands, target)
}

// Or computes target ^= OR(operands) through De Morgan: negate the operands,
// AND them into target, restore the operands and negate target. Operands are
// left unchanged.
func (g *Gates) Or(operands []Qubit, target Qubit) {
	if !g.checkLogic(operands, target) {
		return
	}
	for _, q := range operands {
		g.X(q)
	}
	g.MCX(operands, target)
	for _, q := range operands {
		g.X(q)
	}
	g.X(target)
}

func (g *Gates) checkLogic(operands []Qubit, target Qubit) bool {
	if g.err != nil {
		return false
	}
	if len(operands) == 0 {
		g.fail(errors.Wrapf(ErrNoOperands, "target %q", target.label))
		return false
	}
	for _, q := range operands {
		if q == target {
			g.fail(errors.Wrapf(ErrTargetIsOperand, "qubit %q", q.label))
			return false
		}
	}
	return true
}
