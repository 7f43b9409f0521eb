package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/ir"
)

var taintCmd = &cobra.Command{
	Use:   "taint <address>",
	Short: "Force a resource to be updated on the next deploy",
	Long: `Marks a resource so that the next deploy pushes it to the platform again
even though its declaration did not change, for example to re-upload a
place file or re-apply configuration that was edited on the website.

Example:
  stagehand taint placeFile/start`,
	Args: cobra.ExactArgs(1),
	RunE: runTaint,
}

var untaintCmd = &cobra.Command{
	Use:   "untaint <address>",
	Short: "Remove the taint mark from a resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runUntaint,
}

func runTaint(cmd *cobra.Command, args []string) error {
	target := args[0]
	if err := editState(cmd, func(s *ir.State) error {
		return setTainted(s, target, true)
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Resource %s has been tainted. It will be updated on the next deploy.\n", target)
	return nil
}

func runUntaint(cmd *cobra.Command, args []string) error {
	target := args[0]
	if err := editState(cmd, func(s *ir.State) error {
		return setTainted(s, target, false)
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Resource %s has been untainted.\n", target)
	return nil
}

func setTainted(s *ir.State, addr string, tainted bool) error {
	res := s.Find(addr)
	if res == nil {
		return fmt.Errorf("resource %s not found in state", addr)
	}
	res.Tainted = tainted
	return nil
}
