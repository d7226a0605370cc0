package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newQASMCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "qasm",
		Short: "Print the search circuit as OpenQASM 2.0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := a.build(a.logger)
			if err != nil {
				return err
			}
			text := pl.search.Circuit().ToQASM()
			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return errors.Wrap(err, "write qasm")
			}
			a.logger.Info("qasm written", zap.String("path", output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
