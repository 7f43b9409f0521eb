package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/engine"
)

var validateCmd = &cobra.Command{
	Use:   "validate [project]",
	Short: "Check the declaration without contacting the platform",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	p, err := resolveProject(args)
	if err != nil {
		return err
	}

	fmt.Fprint(out, "Validating declaration... ")
	desired, err := p.desiredResources(cmd.Context())
	if err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	if _, err := engine.BuildDAG(desired); err != nil {
		fmt.Fprintln(out, "FAILED")
		return fmt.Errorf("invalid dependency graph: %w", err)
	}
	fmt.Fprintln(out, "OK")

	fmt.Fprintf(out, "\nDeclaration is valid: %d resources.\n", len(desired))
	return nil
}
