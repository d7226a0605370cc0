package sim

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qgrover/circuit"
)

// pairedCircuit declares one qubit and one classical bit per name.
func pairedCircuit(t *testing.T, names ...string) *circuit.Circuit {
	t.Helper()
	c := circuit.New()
	for _, name := range names {
		_, err := c.AddQuantumRegister("q_"+name, 1)
		require.NoError(t, err)
		_, err = c.AddClassicalRegister("c_"+name, 1)
		require.NoError(t, err)
	}
	return c
}

func measureAll(t *testing.T, c *circuit.Circuit) {
	t.Helper()
	for i := 0; i < c.NumQubits(); i++ {
		require.NoError(t, c.AddMeasure(i, i))
	}
}

func TestRunKeysListLastRegisterFirst(t *testing.T) {
	c := pairedCircuit(t, "a", "b", "c")
	require.NoError(t, c.AddGate(circuit.GateX, 0))
	measureAll(t, c)

	res, err := NewStatevector(WithSeed(1)).Run(context.Background(), c, 100)
	require.NoError(t, err)
	assert.Equal(t, Counts{"0 0 1": 100}, res.Counts)
	assert.Equal(t, 100, res.Shots)
	assert.Equal(t, "statevector", res.Backend)
	assert.NotEmpty(t, res.JobID)
}

func TestRunWideRegisterIsMostSignificantFirst(t *testing.T) {
	c := circuit.New()
	_, err := c.AddQuantumRegister("q", 3)
	require.NoError(t, err)
	_, err = c.AddClassicalRegister("c", 3)
	require.NoError(t, err)
	require.NoError(t, c.AddGate(circuit.GateX, 0))
	measureAll(t, c)

	res, err := NewStatevector(WithSeed(1)).Run(context.Background(), c, 10)
	require.NoError(t, err)
	assert.Equal(t, Counts{"001": 10}, res.Counts)
}

func TestRunBellPairSplitsEvenly(t *testing.T) {
	c := pairedCircuit(t, "a", "b")
	require.NoError(t, c.AddGate(circuit.GateH, 0))
	require.NoError(t, c.AddGate(circuit.GateCX, 1, 0))
	measureAll(t, c)

	res, err := NewStatevector(WithSeed(42)).Run(context.Background(), c, DefaultShots)
	require.NoError(t, err)
	require.Len(t, res.Counts, 2)
	assert.Equal(t, DefaultShots, res.Counts["0 0"]+res.Counts["1 1"])
	assert.InDelta(t, DefaultShots/2, res.Counts["1 1"], 100)
}

func TestRunIsReproducibleForSeed(t *testing.T) {
	c := pairedCircuit(t, "a", "b")
	require.NoError(t, c.AddGate(circuit.GateH, 0))
	require.NoError(t, c.AddGate(circuit.GateH, 1))
	measureAll(t, c)

	first, err := NewStatevector(WithSeed(7), WithWorkers(3)).Run(context.Background(), c, 999)
	require.NoError(t, err)
	second, err := NewStatevector(WithSeed(7), WithWorkers(3)).Run(context.Background(), c, 999)
	require.NoError(t, err)
	assert.Equal(t, first.Counts, second.Counts)
	assert.NotEqual(t, first.JobID, second.JobID)
}

func TestRunUnmeasuredQubitsAreIgnored(t *testing.T) {
	c := pairedCircuit(t, "a")
	_, err := c.AddQuantumRegister("ancilla", 1)
	require.NoError(t, err)
	require.NoError(t, c.AddGate(circuit.GateH, 1))
	require.NoError(t, c.AddGate(circuit.GateX, 0))
	require.NoError(t, c.AddMeasure(0, 0))

	res, err := NewStatevector(WithSeed(3)).Run(context.Background(), c, 64)
	require.NoError(t, err)
	assert.Equal(t, Counts{"1": 64}, res.Counts)
}

func TestRunErrors(t *testing.T) {
	backend := NewStatevector(WithSeed(1))

	t.Run("invalid shots", func(t *testing.T) {
		c := pairedCircuit(t, "a")
		measureAll(t, c)
		_, err := backend.Run(context.Background(), c, 0)
		assert.True(t, errors.Is(err, ErrInvalidShots))
	})

	t.Run("no measurements", func(t *testing.T) {
		_, err := backend.Run(context.Background(), pairedCircuit(t, "a"), 10)
		assert.True(t, errors.Is(err, ErrNoMeasurements))
	})

	t.Run("mid-circuit measurement", func(t *testing.T) {
		c := pairedCircuit(t, "a")
		require.NoError(t, c.AddMeasure(0, 0))
		require.NoError(t, c.AddGate(circuit.GateX, 0))
		_, err := backend.Run(context.Background(), c, 10)
		assert.True(t, errors.Is(err, ErrMidCircuitMeasurement))
	})

	t.Run("too many qubits", func(t *testing.T) {
		c := circuit.New()
		_, err := c.AddQuantumRegister("q", MaxQubits+1)
		require.NoError(t, err)
		_, err = c.AddClassicalRegister("c", 1)
		require.NoError(t, err)
		require.NoError(t, c.AddMeasure(0, 0))
		_, err = backend.Run(context.Background(), c, 10)
		assert.True(t, errors.Is(err, ErrTooManyQubits))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := pairedCircuit(t, "a")
		measureAll(t, c)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := backend.Run(ctx, c, 10)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
