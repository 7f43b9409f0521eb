package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/engine"
)

var graphCmd = &cobra.Command{
	Use:   "graph [project]",
	Short: "Output the dependency graph in DOT format",
	Long: `Writes the resource dependency graph in Graphviz DOT format. Pipe the
output to 'dot' to generate an image:

  stagehand graph | dot -Tpng > graph.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	p, err := resolveProject(args)
	if err != nil {
		return err
	}
	desired, err := p.desiredResources(cmd.Context())
	if err != nil {
		return err
	}

	dag, err := engine.BuildDAG(desired)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	dag.WriteDOT(cmd.OutOrStdout())
	return nil
}
