package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	planOutFile string
	planTargets []string
)

var planCmd = &cobra.Command{
	Use:   "plan [project]",
	Short: "Show what a deploy would change",
	Long: `Compares the declaration with the recorded state and shows the changes
a deploy would make:
  • resources to be created
  • resources to be updated (with diff)
  • resources to be deleted`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planOutFile, "out", "o", "", "Write the plan as JSON to a file")
	planCmd.Flags().StringSliceVar(&planTargets, "target", nil, "Limit planning to a resource address and its dependencies (repeatable)")
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	backend, workspace, err := p.backend(ctx)
	if err != nil {
		return err
	}
	current, err := backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	plan, err := plannerEngine().CreatePlanWithTargets(ctx, desired, current, planTargets)
	if err != nil {
		return fmt.Errorf("plan generation failed: %w", err)
	}
	plan.Metadata.Workspace = workspace

	renderPlan(out, plan)

	if planOutFile != "" {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		if err := os.WriteFile(planOutFile, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
		fmt.Fprintf(out, "\nPlan written to %s\n", planOutFile)
	}
	return nil
}
