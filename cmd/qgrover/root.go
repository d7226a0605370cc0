package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qgrover/grover"
	"qgrover/internal/config"
	"qgrover/internal/logging"
	"qgrover/problems/cnf"
	"qgrover/sim"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	closer io.Closer
}

type rootFlags struct {
	configPath string
	logLevel   string
	shots      int
	iterations int
	seed       uint64
	workers    int
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     = &app{}
	)

	rootCmd := &cobra.Command{
		Use:   "qgrover",
		Short: "Build and simulate Grover search circuits for CNF formulas",
		Long: `qgrover encodes a boolean formula in conjunctive normal form as a
Grover search problem, assembles the amplitude amplification circuit and
samples it on a local statevector simulator.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.IntVar(&flags.shots, "shots", sim.DefaultShots, "number of measurement shots")
	pf.IntVar(&flags.iterations, "iterations", config.OptimalIterations, "Grover iterations, -1 for the optimal count")
	pf.Uint64Var(&flags.seed, "seed", 0, "sampler seed for reproducible counts")
	pf.IntVar(&flags.workers, "workers", 4, "sampling goroutines")

	rootCmd.AddCommand(newRunCmd(a), newQASMCmd(a), newTUICmd(a), newConfigCmd(a))
	return rootCmd
}

// init loads the config file and lays explicitly set flags over it.
func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("shots") {
		cfg.Shots = flags.shots
	}
	if changed("iterations") {
		cfg.Iterations = flags.iterations
	}
	if changed("seed") {
		cfg.Seed = &flags.seed
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "flags")
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closer = cfg, logger, closer
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// plan is a built search ready to simulate.
type plan struct {
	problem    *cnf.Problem
	search     *grover.Search
	iterations int
	solutions  int
}

// build turns the configured formula into a built search circuit.
func (a *app) build(logger *zap.Logger) (*plan, error) {
	f, err := a.cfg.Formula()
	if err != nil {
		return nil, err
	}
	p, err := cnf.New(f)
	if err != nil {
		return nil, err
	}
	s, err := grover.New(p, grover.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	pl := &plan{problem: p, search: s, iterations: a.cfg.Iterations, solutions: -1}
	if n, err := p.Solutions(); err == nil {
		pl.solutions = n
	}
	if pl.iterations == config.OptimalIterations {
		if pl.solutions < 0 {
			return nil, errors.New("cannot derive iterations for this formula, set --iterations")
		}
		pl.iterations = grover.OptimalIterations(p.SearchSpace(), pl.solutions)
	}
	if err := s.BuildAll(p.Target(), pl.iterations); err != nil {
		return nil, err
	}

	logger.Info("search built",
		zap.Stringer("formula", f),
		zap.Int("qubits", s.Circuit().NumQubits()),
		zap.Int("iterations", pl.iterations),
		zap.Int("gates", s.Circuit().Len()),
	)
	return pl, nil
}

// backend returns the simulator configured by the run settings.
func (a *app) backend(logger *zap.Logger) *sim.Statevector {
	opts := []sim.Option{sim.WithWorkers(a.cfg.Workers), sim.WithLogger(logger)}
	if a.cfg.Seed != nil {
		opts = append(opts, sim.WithSeed(*a.cfg.Seed))
	}
	return sim.NewStatevector(opts...)
}

func (pl *plan) describe() string {
	sols := "unknown"
	if pl.solutions >= 0 {
		sols = fmt.Sprint(pl.solutions)
	}
	return fmt.Sprintf("formula:    %s\nspace:      %d assignments, %s satisfying\niterations: %d\n",
		pl.problem.Formula(), pl.problem.SearchSpace(), sols, pl.iterations)
}
