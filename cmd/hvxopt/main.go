// Command hvxopt runs the Hexagon HVX peephole rewriters over a single
// s-expression statement, for manual inspection and golden-file
// generation.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hexagonhvx/peephole/internal/hexagon"
	"github.com/hexagonhvx/peephole/internal/ir"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hvxopt",
		Short:         "Hexagon HVX peephole rewriter driver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log rewrite decisions to stderr")
	root.AddCommand(newInstructionsCmd(), newShufflesCmd())
	return root
}

func newInstructionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instructions [file]",
		Short: "run PatternMatcher + InterleaveEliminator over a statement",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, hexagon.OptimizeInstructions)
		},
	}
}

func newShufflesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shuffles [file]",
		Short: "run BoundedShuffleRewriter over a statement",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, hexagon.OptimizeShuffles)
		},
	}
}

func run(cmd *cobra.Command, args []string, pass func(*ir.Stmt) *ir.Stmt) error {
	if verbose {
		hexagon.SetOutput(cmd.ErrOrStderr(), logrus.DebugLevel)
	}

	src, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	stmt, err := ir.ParseStmt(src)
	if err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	out := pass(stmt)
	fmt.Fprintln(cmd.OutOrStdout(), ir.PrintStmt(out))
	return nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), nil
}
