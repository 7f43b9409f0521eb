package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var destroyAutoApprove bool

var destroyCmd = &cobra.Command{
	Use:   "destroy [project]",
	Short: "Delete every managed resource",
	Long: `Deletes every resource recorded in state, dependents first. The experience
itself is archived rather than deleted, and its start place goes with it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDestroy,
}

func init() {
	destroyCmd.Flags().BoolVar(&destroyAutoApprove, "auto-approve", false, "Skip interactive approval")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	p, err := resolveProject(args)
	if err != nil {
		return err
	}
	eng, err := p.newEngine()
	if err != nil {
		return err
	}
	backend, workspace, err := p.backend(ctx)
	if err != nil {
		return err
	}

	return withLock(ctx, backend, func() error {
		current, err := backend.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}

		plan, err := eng.CreatePlan(ctx, nil, current)
		if err != nil {
			return fmt.Errorf("plan generation failed: %w", err)
		}
		plan.Metadata.Workspace = workspace

		if !plan.HasChanges() {
			fmt.Fprintln(out, "Nothing to destroy.")
			return nil
		}
		renderPlan(out, plan)

		if !destroyAutoApprove && !confirm(cmd, "Do you really want to destroy all resources?") {
			fmt.Fprintln(out, "Destroy cancelled.")
			return nil
		}

		if err := applyPlan(cmd, p, eng, backend, workspace, plan, current); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDestroy complete! %d resources deleted.\n", plan.Summary.Delete+plan.Summary.Forget)
		return nil
	})
}
