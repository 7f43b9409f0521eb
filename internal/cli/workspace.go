package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
	Long: `Workspaces deploy the same declaration to separate experiences, for
example staging and production. Each workspace has its own state.

The default workspace is called "default".`,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	Args:  cobra.NoArgs,
	RunE:  runWorkspaceList,
}

var workspaceNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new workspace and switch to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceNew,
}

var workspaceSelectCmd = &cobra.Command{
	Use:   "select <name>",
	Short: "Switch to another workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceSelect,
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a workspace's state",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceDelete,
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current workspace name",
	Args:  cobra.NoArgs,
	RunE:  runWorkspaceShow,
}

func init() {
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceNewCmd)
	workspaceCmd.AddCommand(workspaceSelectCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)
}

func runWorkspaceList(cmd *cobra.Command, args []string) error {
	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	ws := p.workspaces()
	names, err := ws.List()
	if err != nil {
		return err
	}

	current := ws.Current()
	for _, name := range names {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
	}
	return nil
}

func runWorkspaceNew(cmd *cobra.Command, args []string) error {
	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	if err := p.workspaces().Create(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created and switched to workspace %q\n", args[0])
	return nil
}

func runWorkspaceSelect(cmd *cobra.Command, args []string) error {
	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	if err := p.workspaces().Select(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Switched to workspace %q\n", args[0])
	return nil
}

func runWorkspaceDelete(cmd *cobra.Command, args []string) error {
	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	if err := p.workspaces().Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted workspace %q\n", args[0])
	return nil
}

func runWorkspaceShow(cmd *cobra.Command, args []string) error {
	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.workspaces().Current())
	return nil
}
