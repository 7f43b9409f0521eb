package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deployAutoApprove     bool
	deployTargets         []string
	deployContinueOnError bool
)

var deployCmd = &cobra.Command{
	Use:     "deploy [project]",
	Aliases: []string{"apply"},
	Short:   "Deploy the declaration to the platform",
	Long: `Plans and applies the changes needed to make the experience match its
declaration. Independent resources are deployed in parallel; state is saved
after every run, including failed ones.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().BoolVar(&deployAutoApprove, "auto-approve", false, "Skip interactive approval of the plan")
	deployCmd.Flags().StringSliceVar(&deployTargets, "target", nil, "Limit the deploy to a resource address and its dependencies (repeatable)")
	deployCmd.Flags().BoolVar(&deployContinueOnError, "continue-on-error", false, "Keep deploying independent resources after a failure")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	p, err := resolveProject(args)
	if err != nil {
		return err
	}
	desired, err := p.desiredResources(ctx)
	if err != nil {
		return err
	}
	eng, err := p.newEngine()
	if err != nil {
		return err
	}
	eng.ContinueOnError = deployContinueOnError

	backend, workspace, err := p.backend(ctx)
	if err != nil {
		return err
	}

	return withLock(ctx, backend, func() error {
		current, err := backend.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}

		plan, err := eng.CreatePlanWithTargets(ctx, desired, current, deployTargets)
		if err != nil {
			return fmt.Errorf("plan generation failed: %w", err)
		}
		plan.Metadata.Workspace = workspace

		renderPlan(out, plan)
		if !plan.HasChanges() {
			return nil
		}

		if !deployAutoApprove && !confirm(cmd, "Do you want to perform these actions?") {
			fmt.Fprintln(out, "Deploy cancelled.")
			return nil
		}

		if err := applyPlan(cmd, p, eng, backend, workspace, plan, current); err != nil {
			return err
		}

		s := plan.Summary
		fmt.Fprintf(out, "\nDeploy complete! Resources: %d created, %d updated, %d deleted.\n", s.Create, s.Update, s.Delete+s.Forget)
		return nil
	})
}
