package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build the search circuit, simulate it and print the counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := a.build(a.logger)
			if err != nil {
				return err
			}
			marginals, err := pl.search.Marginals()
			if err != nil {
				return err
			}
			table, res, err := pl.search.Simulate(cmd.Context(), a.backend(a.logger), a.cfg.Shots)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, pl.describe())
			fmt.Fprintln(out, table.Render())
			fmt.Fprintf(out, "P(1):       %s\n", formatMarginals(pl.search.Names(), marginals))
			fmt.Fprintf(out, "job %s on %s: %d shots in %s\n", res.JobID, res.Backend, res.Shots, res.Duration)

			if len(table.Rows) > 0 {
				f := pl.problem.Formula()
				assignment := pl.problem.Assignment(table.Rows[0].Values)
				fmt.Fprintf(out, "most frequent: %s (%.1f%%), satisfies: %t\n",
					f.FormatAssignment(assignment), 100*table.Proportion(0), f.Eval(assignment))
			}
			return nil
		},
	}
}

func formatMarginals(names []string, marginals map[string]float64) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.2f", name, marginals[name])
	}
	return strings.Join(parts, " ")
}
