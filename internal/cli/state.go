package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/resources"
	"github.com/picklr-io/stagehand/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and edit recorded state",
	Long:  `Commands for inspecting and modifying the state of the current workspace.`,
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources in state",
	Args:  cobra.NoArgs,
	RunE:  runStateList,
}

var stateShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show the recorded inputs and outputs of a resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateShow,
}

var stateMvCmd = &cobra.Command{
	Use:   "mv <source> <destination>",
	Short: "Rename a resource in state",
	Args:  cobra.ExactArgs(2),
	RunE:  runStateMv,
}

var stateRmCmd = &cobra.Command{
	Use:   "rm <address>",
	Short: "Forget a resource (it is NOT deleted from the platform)",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateRm,
}

func init() {
	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateMvCmd)
	stateCmd.AddCommand(stateRmCmd)
}

func openState(cmd *cobra.Command) (state.Backend, *ir.State, error) {
	p, err := resolveProject(nil)
	if err != nil {
		return nil, nil, err
	}
	backend, _, err := p.backend(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	s, err := backend.Read(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read state: %w", err)
	}
	return backend, s, nil
}

// editState reads, edits and writes state under the lock. The serial is
// bumped when edit succeeds.
func editState(cmd *cobra.Command, edit func(s *ir.State) error) error {
	ctx := cmd.Context()
	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	backend, _, err := p.backend(ctx)
	if err != nil {
		return err
	}

	return withLock(ctx, backend, func() error {
		s, err := backend.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}
		if err := edit(s); err != nil {
			return err
		}
		s.Serial++
		if err := backend.Write(ctx, s); err != nil {
			return fmt.Errorf("failed to write state: %w", err)
		}
		return nil
	})
}

func runStateList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	_, s, err := openState(cmd)
	if err != nil {
		return err
	}

	if len(s.Resources) == 0 {
		fmt.Fprintln(out, "No resources in state.")
		return nil
	}

	fmt.Fprintf(out, "State version: %d, serial: %d, lineage: %s\n\n", s.Version, s.Serial, s.Lineage)
	addrs := make([]string, 0, len(s.Resources))
	for _, res := range s.Resources {
		addrs = append(addrs, res.Address())
	}
	slices.Sort(addrs)
	for _, addr := range addrs {
		fmt.Fprintf(out, "  %s\n", addr)
	}
	fmt.Fprintf(out, "\nTotal: %d resource(s)\n", len(s.Resources))
	return nil
}

func runStateShow(cmd *cobra.Command, args []string) error {
	_, s, err := openState(cmd)
	if err != nil {
		return err
	}
	res := s.Find(args[0])
	if res == nil {
		return fmt.Errorf("resource %s not found in state", args[0])
	}
	renderResourceState(cmd.OutOrStdout(), res)
	return nil
}

func renderResourceState(w io.Writer, res *ir.ResourceState) {
	fmt.Fprintf(w, "# %s\n", res.Address())
	fmt.Fprintf(w, "  type = %s\n", res.Type)
	fmt.Fprintf(w, "  name = %s\n", res.Name)

	if len(res.Dependencies) > 0 {
		fmt.Fprintf(w, "  dependencies = %s\n", formatValue(res.Dependencies))
	}
	if len(res.Inputs) > 0 {
		fmt.Fprintln(w, "\n  Inputs:")
		writeOutputs(w, res.Inputs, "    ")
	}
	if len(res.Outputs) > 0 {
		fmt.Fprintln(w, "\n  Outputs:")
		writeOutputs(w, res.Outputs, "    ")
	}
	if res.InputsHash != "" {
		fmt.Fprintf(w, "\n  inputs_hash = %s\n", res.InputsHash)
	}
	if res.Tainted {
		fmt.Fprintln(w, "  tainted = true")
	}
}

func runStateMv(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]
	err := editState(cmd, func(s *ir.State) error {
		return moveResource(s, src, dst)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", src, dst)
	return nil
}

// moveResource renames src to dst and rewrites dependency edges pointing at it.
// The resource type cannot change.
func moveResource(s *ir.State, src, dst string) error {
	res := s.Find(src)
	if res == nil {
		return fmt.Errorf("resource %s not found in state", src)
	}
	typ, name, ok := ir.SplitAddress(dst)
	if !ok || name == "" {
		return fmt.Errorf("invalid destination address %q, expected <type>/<name>", dst)
	}
	if typ != res.Type {
		return fmt.Errorf("cannot move %s to %s: resource type cannot change", src, dst)
	}
	if !resources.IsKnownType(typ) {
		return fmt.Errorf("unknown resource type %q", typ)
	}
	if s.Find(dst) != nil {
		return fmt.Errorf("resource %s already exists in state", dst)
	}

	res.Name = name
	for _, other := range s.Resources {
		for i, dep := range other.Dependencies {
			if dep == src {
				other.Dependencies[i] = dst
			}
		}
	}
	return nil
}

func runStateRm(cmd *cobra.Command, args []string) error {
	target := args[0]
	err := editState(cmd, func(s *ir.State) error {
		if !s.Remove(target) {
			return fmt.Errorf("resource %s not found in state", target)
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from state (resource was NOT deleted)\n", target)
	return nil
}
