package grover

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qgrover/sim"
)

// logicProblem loads a fixed assignment into its operands and applies one
// logic helper. It is only ever built with zero iterations, so it keeps the
// unimplemented revert hook.
type logicProblem struct {
	Unimplemented
	inputs   []bool
	op       func(g *Gates, operands []Qubit, target Qubit)
	operands []Qubit
	target   Qubit
}

func (p *logicProblem) Prepare(r *Registry) error {
	for i := range p.inputs {
		q, err := r.CreateQubit(fmt.Sprintf("x%d", i))
		if err != nil {
			return err
		}
		p.operands = append(p.operands, q)
	}
	var err error
	p.target, err = r.CreateQubit("out")
	return err
}

func (p *logicProblem) BuildSearchSpace(g *Gates) error {
	for i, on := range p.inputs {
		if on {
			g.Not(p.operands[i])
		}
	}
	p.op(g, p.operands, p.target)
	return g.Err()
}

// evaluate runs the problem once and returns the single observed outcome.
func evaluate(t *testing.T, p *logicProblem) map[string]string {
	t.Helper()
	s, err := New(p)
	require.NoError(t, err)
	require.NoError(t, s.BuildAll(p.target, 0))

	table, _, err := s.Simulate(context.Background(), sim.NewStatevector(sim.WithSeed(1)), 16)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1, "logic circuits are deterministic")
	return table.Rows[0].Values
}

func assignments(n int) [][]bool {
	out := make([][]bool, 0, 1<<n)
	for mask := 0; mask < 1<<n; mask++ {
		in := make([]bool, n)
		for i := range in {
			in[i] = mask&(1<<i) != 0
		}
		out = append(out, in)
	}
	return out
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func TestLogicTruthTables(t *testing.T) {
	tests := []struct {
		name string
		op   func(g *Gates, operands []Qubit, target Qubit)
		want func(in []bool) bool
	}{
		{
			name: "and",
			op:   (*Gates).And,
			want: func(in []bool) bool {
				for _, v := range in {
					if !v {
						return false
					}
				}
				return true
			},
		},
		{
			name: "or",
			op:   (*Gates).Or,
			want: func(in []bool) bool {
				for _, v := range in {
					if v {
						return true
					}
				}
				return false
			},
		},
	}

	for _, tt := range tests {
		for _, n := range []int{1, 2, 3} {
			for _, in := range assignments(n) {
				t.Run(fmt.Sprintf("%s/%v", tt.name, in), func(t *testing.T) {
					values := evaluate(t, &logicProblem{inputs: in, op: tt.op})
					for i, v := range in {
						assert.Equal(t, bit(v), values[fmt.Sprintf("x%d", i)], "operand %d changed", i)
					}
					assert.Equal(t, bit(tt.want(in)), values["out"])
				})
			}
		}
	}
}

func TestNotIsSelfInverse(t *testing.T) {
	values := evaluate(t, &logicProblem{
		inputs: []bool{true},
		op: func(g *Gates, operands []Qubit, target Qubit) {
			g.Not(target)
			g.Not(target)
			g.Not(operands[0])
		},
	})
	assert.Equal(t, map[string]string{"x0": "0", "out": "0"}, values)
}

func TestLogicArgumentErrors(t *testing.T) {
	var bad error
	p := &logicProblem{
		inputs: []bool{false, false},
		op: func(g *Gates, operands []Qubit, target Qubit) {
			g.And(nil, target)
			bad = g.Err()
		},
	}
	s, err := New(p)
	require.NoError(t, err)
	assert.True(t, errors.Is(s.BuildAll(p.target, 0), ErrNoOperands))
	assert.True(t, errors.Is(bad, ErrNoOperands))

	p = &logicProblem{
		inputs: []bool{false, false},
		op: func(g *Gates, operands []Qubit, target Qubit) {
			g.Or(operands, operands[1])
		},
	}
	s, err = New(p)
	require.NoError(t, err)
	assert.True(t, errors.Is(s.BuildAll(p.target, 0), ErrTargetIsOperand))
}

func TestGatesErrorIsSticky(t *testing.T) {
	other, err := New(&emptyProblem{labels: []string{"z"}})
	require.NoError(t, err)
	foreign := other.Qubits()[0]

	p := &logicProblem{
		inputs: []bool{false},
		op: func(g *Gates, operands []Qubit, target Qubit) {
			g.H(foreign)
			g.X(target)
			g.CZ(operands[0], target)
			g.MCX(operands, target)
			g.Barrier()
		},
	}
	s, err := New(p)
	require.NoError(t, err)
	before := s.Circuit().Len()

	assert.True(t, errors.Is(s.BuildAll(p.target, 0), ErrForeignQubit))
	// only the barrier in front of the encoding made it into the circuit
	assert.Equal(t, before+1, s.Circuit().Len())
}
