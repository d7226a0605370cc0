package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qgrover/internal/tui"
	"qgrover/result"
	"qgrover/sim"
)

func newTUICmd(a *app) *cobra.Command {
	var qasmOut string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the circuit, its QASM and simulation results interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stderr belongs to the terminal UI; only a log file gets output
			logger := zap.NewNop()
			if a.cfg.LogFile != "" {
				logger = a.logger
			}

			pl, err := a.build(logger)
			if err != nil {
				return err
			}
			backend := a.backend(logger)
			run := func(ctx context.Context) (*result.Table, *sim.Result, error) {
				return pl.search.Simulate(ctx, backend, a.cfg.Shots)
			}

			m := tui.New(pl.problem.Formula().String(), pl.search.Circuit(), run,
				tui.WithLogger(logger),
				tui.WithContext(cmd.Context()),
				tui.WithQASMPath(qasmOut),
			)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&qasmOut, "qasm-out", "search.qasm", "file written by ctrl+s")
	return cmd
}
