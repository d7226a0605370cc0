// Package sim executes frozen circuits on a statevector simulator and
// aggregates repeated measurement shots into bit-string counts.
package sim

import (
	"context"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"qgrover/circuit"
)

const (
	// DefaultShots is the number of repetitions used when the caller has no
	// preference.
	DefaultShots = 1024

	// MaxQubits bounds the statevector at 2^24 amplitudes.
	MaxQubits = 24

	defaultWorkers = 4
)

var (
	ErrInvalidShots          = errors.New("shots must be positive")
	ErrTooManyQubits         = errors.New("circuit exceeds simulator qubit limit")
	ErrNoMeasurements        = errors.New("circuit has no measurements")
	ErrMidCircuitMeasurement = errors.New("gate applied to a qubit after its measurement")
)

// Counts maps a measurement bit-string to the number of shots that produced
// it. Keys hold one space-separated group per classical register, the last
// declared register first, each group written most significant bit first.
type Counts map[string]int

// Result is the outcome of one backend run.
type Result struct {
	JobID    string
	Backend  string
	Shots    int
	Counts   Counts
	Duration time.Duration
}

// Backend runs a circuit for a number of shots.
type Backend interface {
	Name() string
	Run(ctx context.Context, c *circuit.Circuit, shots int) (*Result, error)
}

// Option configures a Statevector backend.
type Option func(*Statevector)

// WithSeed fixes the sampling seed so runs are reproducible.
func WithSeed(seed uint64) Option {
	return func(b *Statevector) { b.seed = seed }
}

// WithWorkers sets how many goroutines share the sampling work. Results for
// a given seed depend on this value.
func WithWorkers(n int) Option {
	return func(b *Statevector) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger attaches a logger for run diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(b *Statevector) {
		if l != nil {
			b.logger = l
		}
	}
}

// Statevector is an exact statevector backend. All measurements must be
// terminal: the state is evolved once and the measured bits are sampled from
// the final amplitudes.
type Statevector struct {
	seed    uint64
	workers int
	logger  *zap.Logger
}

// NewStatevector returns a statevector backend. Without WithSeed the seed is
// random.
func NewStatevector(opts ...Option) *Statevector {
	b := &Statevector{
		seed:    rand.Uint64(),
		workers: defaultWorkers,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Statevector) Name() string { return "statevector" }

// Seed returns the sampling seed in use.
func (b *Statevector) Seed() uint64 { return b.seed }

// Run evolves the circuit and samples its measurements shots times.
func (b *Statevector) Run(ctx context.Context, c *circuit.Circuit, shots int) (*Result, error) {
	if shots <= 0 {
		return nil, errors.Wrapf(ErrInvalidShots, "shots=%d", shots)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.Measurements()) == 0 {
		return nil, ErrNoMeasurements
	}

	start := time.Now()
	state, err := Evolve(c)
	if err != nil {
		return nil, err
	}

	keys, cdf := outcomeDistribution(c, state)
	counts, err := b.sample(ctx, keys, cdf, shots)
	if err != nil {
		return nil, errors.Wrap(err, "sampling")
	}

	res := &Result{
		JobID:    uuid.NewString(),
		Backend:  b.Name(),
		Shots:    shots,
		Counts:   counts,
		Duration: time.Since(start),
	}
	b.logger.Debug("simulation finished",
		zap.String("job_id", res.JobID),
		zap.Int("qubits", c.NumQubits()),
		zap.Int("gates", c.Len()),
		zap.Int("shots", shots),
		zap.Int("outcomes", len(counts)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// Evolve applies every unitary gate of the circuit to |0...0> and returns the
// final state. Measurements are skipped but no gate may touch a qubit after
// it has been measured.
func Evolve(c *circuit.Circuit) (*StateVector, error) {
	if c.NumQubits() > MaxQubits {
		return nil, errors.Wrapf(ErrTooManyQubits, "%d > %d", c.NumQubits(), MaxQubits)
	}
	state := NewStateVector(c.NumQubits())
	measured := make(map[int]bool)

	for i, gate := range c.Gates() {
		if gate.Type == circuit.GateMeasure {
			measured[gate.Target] = true
			continue
		}
		for _, q := range gate.Qubits() {
			if measured[q] {
				return nil, errors.Wrapf(ErrMidCircuitMeasurement, "gate %d (%s) on qubit %d", i, gate.Type, q)
			}
		}
		if err := state.ApplyGate(gate); err != nil {
			return nil, errors.Wrapf(err, "gate %d", i)
		}
	}
	return state, nil
}

// outcomeDistribution folds the basis-state probabilities into measurement
// keys and returns the keys with their cumulative probabilities.
func outcomeDistribution(c *circuit.Circuit, state *StateVector) ([]string, []float64) {
	measurements := c.Measurements()
	cregs := c.ClassicalRegisters()
	bits := make([]byte, c.NumCbits())

	byKey := make(map[string]float64)
	for index, p := range state.Probabilities() {
		if p < 1e-15 {
			continue
		}
		for i := range bits {
			bits[i] = '0'
		}
		for _, m := range measurements {
			if index&(1<<m.Target) != 0 {
				bits[m.Cbit] = '1'
			} else {
				bits[m.Cbit] = '0'
			}
		}
		byKey[formatKey(bits, cregs)] += p
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	cdf := make([]float64, len(keys))
	total := 0.0
	for i, k := range keys {
		total += byKey[k]
		cdf[i] = total
	}
	return keys, cdf
}

func formatKey(bits []byte, cregs []circuit.Register) string {
	groups := make([]string, 0, len(cregs))
	for i := len(cregs) - 1; i >= 0; i-- {
		r := cregs[i]
		group := make([]byte, r.Size)
		for k := 0; k < r.Size; k++ {
			group[r.Size-1-k] = bits[r.Offset+k]
		}
		groups = append(groups, string(group))
	}
	return strings.Join(groups, " ")
}

func (b *Statevector) sample(ctx context.Context, keys []string, cdf []float64, shots int) (Counts, error) {
	total := cdf[len(cdf)-1]
	partials := make([][]int, b.workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < b.workers; w++ {
		n := shots / b.workers
		if w < shots%b.workers {
			n++
		}
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(b.seed, uint64(w)))
			local := make([]int, len(keys))
			for i := 0; i < n; i++ {
				if i%4096 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				idx := sort.SearchFloat64s(cdf, rng.Float64()*total)
				local[min(idx, len(keys)-1)]++
			}
			partials[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(Counts, len(keys))
	for _, local := range partials {
		for i, n := range local {
			if n > 0 {
				counts[keys[i]] += n
			}
		}
	}
	return counts, nil
}
