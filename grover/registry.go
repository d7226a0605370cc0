package grover

import (
	"regexp"
	"slices"

	"github.com/pkg/errors"

	"qgrover/circuit"
)

// labelPattern keeps labels usable as OpenQASM register names.
var labelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidLabel reports whether label can name a qubit.
func ValidLabel(label string) bool { return labelPattern.MatchString(label) }

// Qubit is an immutable handle to a named one-qubit register. Handles are
// compared by owner and id, never by address.
type Qubit struct {
	owner uint64
	id    int // position in declaration order
	index int // flat qubit index in the circuit
	label string
}

// Label returns the name the qubit was declared with.
func (q Qubit) Label() string { return q.label }

// ID returns the qubit's position in declaration order.
func (q Qubit) ID() int { return q.id }

// Registry allocates named qubits, each paired with a classical bit of the
// same label. It is open only while Problem.Prepare runs.
type Registry struct {
	owner  uint64
	circ   *circuit.Circuit
	qubits []Qubit
	cbits  []int
	byName map[string]int
	closed bool
}

func newRegistry(owner uint64, circ *circuit.Circuit) *Registry {
	return &Registry{owner: owner, circ: circ, byName: make(map[string]int)}
}

// CreateQubit declares the quantum register q_<label> and the classical
// register c_<label> and returns a handle to the qubit.
func (r *Registry) CreateQubit(label string) (Qubit, error) {
	if r.closed {
		return Qubit{}, errors.Wrap(ErrRegistryClosed, label)
	}
	if !ValidLabel(label) {
		return Qubit{}, errors.Wrapf(ErrInvalidLabel, "%q", label)
	}
	if _, ok := r.byName[label]; ok {
		return Qubit{}, errors.Wrap(ErrDuplicateLabel, label)
	}

	qreg, err := r.circ.AddQuantumRegister("q_"+label, 1)
	if err != nil {
		return Qubit{}, errors.Wrapf(err, "qubit %q", label)
	}
	creg, err := r.circ.AddClassicalRegister("c_"+label, 1)
	if err != nil {
		return Qubit{}, errors.Wrapf(err, "qubit %q", label)
	}

	q := Qubit{owner: r.owner, id: len(r.qubits), index: qreg.Offset, label: label}
	r.qubits = append(r.qubits, q)
	r.cbits = append(r.cbits, creg.Offset)
	r.byName[label] = q.id
	return q, nil
}

// Lookup returns the qubit declared under label.
func (r *Registry) Lookup(label string) (Qubit, bool) {
	id, ok := r.byName[label]
	if !ok {
		return Qubit{}, false
	}
	return r.qubits[id], true
}

// Len returns the number of declared qubits.
func (r *Registry) Len() int { return len(r.qubits) }

func (r *Registry) close() { r.closed = true }

// check verifies that q was allocated by this registry.
func (r *Registry) check(q Qubit) error {
	if q.owner != r.owner || q.id < 0 || q.id >= len(r.qubits) || r.qubits[q.id] != q {
		return errors.Wrapf(ErrForeignQubit, "qubit %q", q.label)
	}
	return nil
}

func (r *Registry) names() []string {
	names := make([]string, len(r.qubits))
	for i, q := range r.qubits {
		names[i] = q.label
	}
	return names
}

func (r *Registry) all() []Qubit { return slices.Clone(r.qubits) }
