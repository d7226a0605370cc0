package sim

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"qgrover/circuit"
)

type Complex = complex128

// StateVector holds the 2^n complex amplitudes of an n-qubit register.
// Qubit q corresponds to bit q of the basis-state index.
type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

// NewStateVector returns |0...0> on numQubits qubits.
func NewStateVector(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]Complex, n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// ApplyGate applies one unitary gate. Barriers are no-ops; measurements are
// handled by the sampler and rejected here.
func (s *StateVector) ApplyGate(g circuit.Gate) error {
	switch g.Type {
	case circuit.GateH:
		s.applyH(g.Target)
	case circuit.GateX:
		s.applyX(g.Target)
	case circuit.GateZ:
		s.applyZ(g.Target)
	case circuit.GateCX:
		s.applyMCX([]int{g.Control}, g.Target)
	case circuit.GateCZ:
		s.applyCZ(g.Control, g.Target)
	case circuit.GateMCX:
		s.applyMCX(g.Controls, g.Target)
	case circuit.GateBarrier:
	default:
		return errors.Wrap(circuit.ErrUnknownGate, g.Type)
	}
	return nil
}

func (s *StateVector) applyH(q int) {
	hFactor := complex(1.0/math.Sqrt2, 0)
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = hFactor * (a + b)
			s.Amplitudes[j] = hFactor * (a - b)
		}
	}
}

func (s *StateVector) applyX(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyZ(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= -1
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	n := len(s.Amplitudes)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit != 0 {
			s.Amplitudes[i] *= -1
		}
	}
}

// applyMCX flips target on every basis state where all controls are set.
func (s *StateVector) applyMCX(controls []int, target int) {
	n := len(s.Amplitudes)
	mask := 0
	for _, c := range controls {
		mask |= 1 << c
	}
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&mask == mask && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// Probabilities returns |amplitude|^2 for every basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		probs[i] = real(amp * cmplx.Conj(amp))
	}
	return probs
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// GetQubitProbabilities returns the marginal probabilities of every qubit.
func (s *StateVector) GetQubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, prob := range s.Probabilities() {
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}
	return probs
}
