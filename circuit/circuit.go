// Package circuit holds the gate-level model of a quantum circuit: named
// quantum and classical registers, an ordered gate list, barriers and
// measurements. Circuits are built incrementally and frozen before they are
// handed to a simulator.
package circuit

import (
	"slices"

	"github.com/pkg/errors"
)

// Gate types understood by the circuit model and the simulator.
const (
	GateH       = "H"
	GateX       = "X"
	GateZ       = "Z"
	GateCX      = "CX"
	GateCZ      = "CZ"
	GateMCX     = "MCX"
	GateBarrier = "BARRIER"
	GateMeasure = "MEASURE"
)

var (
	ErrFrozen            = errors.New("circuit is frozen")
	ErrDuplicateRegister = errors.New("register name already in use")
	ErrInvalidRegister   = errors.New("invalid register")
	ErrQubitRange        = errors.New("qubit index out of range")
	ErrCbitRange         = errors.New("classical bit index out of range")
	ErrDuplicateQubits   = errors.New("gate references the same qubit twice")
	ErrUnknownGate       = errors.New("unknown gate type")
)

// Gate represents one operation appended to the circuit.
type Gate struct {
	Type     string
	Target   int   // -1 for barriers
	Control  int   // -1 if not a single-controlled gate
	Controls []int // control qubits for MCX
	Cbit     int   // classical bit written by MEASURE, -1 otherwise
}

// Qubits returns every qubit the gate touches, controls first.
// Barriers span the whole circuit and return nil.
func (g Gate) Qubits() []int {
	if g.Type == GateBarrier {
		return nil
	}
	qs := make([]int, 0, len(g.Controls)+2)
	qs = append(qs, g.Controls...)
	if g.Control >= 0 {
		qs = append(qs, g.Control)
	}
	return append(qs, g.Target)
}

// RegisterKind distinguishes quantum from classical registers.
type RegisterKind int

const (
	Quantum RegisterKind = iota
	Classical
)

// Register is a named, contiguous block of qubits or classical bits.
type Register struct {
	Name   string
	Kind   RegisterKind
	Offset int // index of the register's first bit in the flat index space
	Size   int
}

// Contains reports whether the flat index belongs to the register.
func (r Register) Contains(index int) bool {
	return index >= r.Offset && index < r.Offset+r.Size
}

// Circuit holds the quantum circuit state.
type Circuit struct {
	qregs     []Register
	cregs     []Register
	numQubits int
	numCbits  int
	gates     []Gate
	frozen    bool
}

// New returns an empty circuit without registers.
func New() *Circuit {
	return &Circuit{}
}

// AddQuantumRegister declares a quantum register of the given size and
// returns it. Qubits of later registers follow the earlier ones.
func (c *Circuit) AddQuantumRegister(name string, size int) (Register, error) {
	reg, err := c.addRegister(name, size, Quantum, c.numQubits)
	if err != nil {
		return Register{}, err
	}
	c.qregs = append(c.qregs, reg)
	c.numQubits += size
	return reg, nil
}

// AddClassicalRegister declares a classical register of the given size.
func (c *Circuit) AddClassicalRegister(name string, size int) (Register, error) {
	reg, err := c.addRegister(name, size, Classical, c.numCbits)
	if err != nil {
		return Register{}, err
	}
	c.cregs = append(c.cregs, reg)
	c.numCbits += size
	return reg, nil
}

func (c *Circuit) addRegister(name string, size int, kind RegisterKind, offset int) (Register, error) {
	if c.frozen {
		return Register{}, ErrFrozen
	}
	if name == "" || size < 1 {
		return Register{}, errors.Wrapf(ErrInvalidRegister, "name %q size %d", name, size)
	}
	for _, r := range c.qregs {
		if r.Name == name {
			return Register{}, errors.Wrap(ErrDuplicateRegister, name)
		}
	}
	for _, r := range c.cregs {
		if r.Name == name {
			return Register{}, errors.Wrap(ErrDuplicateRegister, name)
		}
	}
	return Register{Name: name, Kind: kind, Offset: offset, Size: size}, nil
}

// QuantumRegisters returns the quantum registers in declaration order.
func (c *Circuit) QuantumRegisters() []Register { return slices.Clone(c.qregs) }

// ClassicalRegisters returns the classical registers in declaration order.
func (c *Circuit) ClassicalRegisters() []Register { return slices.Clone(c.cregs) }

// NumQubits returns the total number of qubits across all registers.
func (c *Circuit) NumQubits() int { return c.numQubits }

// NumCbits returns the total number of classical bits across all registers.
func (c *Circuit) NumCbits() int { return c.numCbits }

// Gates returns a copy of the gate list in append order.
func (c *Circuit) Gates() []Gate {
	gates := make([]Gate, len(c.gates))
	for i, g := range c.gates {
		g.Controls = slices.Clone(g.Controls)
		gates[i] = g
	}
	return gates
}

// Len returns the number of appended operations, barriers included.
func (c *Circuit) Len() int { return len(c.gates) }

// Freeze makes the circuit immutable. Every later append fails with ErrFrozen.
func (c *Circuit) Freeze() { c.frozen = true }

// Frozen reports whether Freeze has been called.
func (c *Circuit) Frozen() bool { return c.frozen }

// AddGate appends a single-qubit gate, or a singly-controlled gate when a
// control qubit is given.
func (c *Circuit) AddGate(gateType string, target int, control ...int) error {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	switch gateType {
	case GateH, GateX, GateZ:
		if len(control) > 0 {
			return errors.Wrapf(ErrUnknownGate, "controlled %s", gateType)
		}
	case GateCX, GateCZ:
		if len(control) == 0 {
			return errors.Wrapf(ErrQubitRange, "%s without control", gateType)
		}
	default:
		return errors.Wrap(ErrUnknownGate, gateType)
	}
	qubits := []int{target}
	if ctrl >= 0 {
		qubits = append(qubits, ctrl)
	}
	if err := c.checkQubits(qubits...); err != nil {
		return err
	}
	return c.append(Gate{Type: gateType, Target: target, Control: ctrl, Cbit: -1})
}

// AddMultiControlGate appends a multi-controlled X. One control degrades to
// CX and zero controls to a plain X.
func (c *Circuit) AddMultiControlGate(target int, controls []int) error {
	switch len(controls) {
	case 0:
		return c.AddGate(GateX, target)
	case 1:
		return c.AddGate(GateCX, target, controls[0])
	}
	if err := c.checkQubits(append(slices.Clone(controls), target)...); err != nil {
		return err
	}
	return c.append(Gate{
		Type:     GateMCX,
		Target:   target,
		Control:  -1,
		Controls: slices.Clone(controls),
		Cbit:     -1,
	})
}

// AddBarrier appends a barrier spanning all qubits.
func (c *Circuit) AddBarrier() error {
	return c.append(Gate{Type: GateBarrier, Target: -1, Control: -1, Cbit: -1})
}

// AddMeasure appends a measurement of qubit into classical bit cbit.
func (c *Circuit) AddMeasure(qubit, cbit int) error {
	if err := c.checkQubits(qubit); err != nil {
		return err
	}
	if cbit < 0 || cbit >= c.numCbits {
		return errors.Wrapf(ErrCbitRange, "cbit %d of %d", cbit, c.numCbits)
	}
	return c.append(Gate{Type: GateMeasure, Target: qubit, Control: -1, Cbit: cbit})
}

// Measurements returns the MEASURE operations in append order.
func (c *Circuit) Measurements() []Gate {
	var out []Gate
	for _, g := range c.gates {
		if g.Type == GateMeasure {
			out = append(out, g)
		}
	}
	return out
}

// MeasuresQubit reports whether any measurement reads the given qubit.
func (c *Circuit) MeasuresQubit(qubit int) bool {
	for _, g := range c.gates {
		if g.Type == GateMeasure && g.Target == qubit {
			return true
		}
	}
	return false
}

// QubitRegister returns the quantum register holding the flat qubit index.
func (c *Circuit) QubitRegister(qubit int) (Register, bool) {
	for _, r := range c.qregs {
		if r.Contains(qubit) {
			return r, true
		}
	}
	return Register{}, false
}

// CbitRegister returns the classical register holding the flat bit index.
func (c *Circuit) CbitRegister(cbit int) (Register, bool) {
	for _, r := range c.cregs {
		if r.Contains(cbit) {
			return r, true
		}
	}
	return Register{}, false
}

func (c *Circuit) checkQubits(qubits ...int) error {
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= c.numQubits {
			return errors.Wrapf(ErrQubitRange, "qubit %d of %d", q, c.numQubits)
		}
		if seen[q] {
			return errors.Wrapf(ErrDuplicateQubits, "qubit %d", q)
		}
		seen[q] = true
	}
	return nil
}

func (c *Circuit) append(g Gate) error {
	if c.frozen {
		return ErrFrozen
	}
	c.gates = append(c.gates, g)
	return nil
}
