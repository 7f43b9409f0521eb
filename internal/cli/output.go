package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

var outputJSON bool

var outputCmd = &cobra.Command{
	Use:   "output [address]",
	Short: "Show resource outputs from state",
	Long: `Prints the outputs recorded for deployed resources, such as the
experience's asset id and start place id.

If no address is given, outputs of every resource are displayed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutput,
}

func init() {
	outputCmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
}

func runOutput(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	backend, _, err := p.backend(ctx)
	if err != nil {
		return err
	}
	s, err := backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	outputs := make(map[string]map[string]any)
	for _, res := range s.Resources {
		if len(res.Outputs) > 0 {
			outputs[res.Address()] = res.Outputs
		}
	}

	if len(args) > 0 {
		res := s.Find(args[0])
		if res == nil {
			return fmt.Errorf("resource %s not found in state", args[0])
		}
		if outputJSON {
			return writeJSON(out, res.Outputs)
		}
		writeOutputs(out, res.Outputs, "")
		return nil
	}

	if outputJSON {
		return writeJSON(out, outputs)
	}
	if len(outputs) == 0 {
		fmt.Fprintln(out, "No outputs recorded.")
		return nil
	}
	for _, addr := range sortedAddresses(outputs) {
		fmt.Fprintf(out, "%s:\n", addr)
		writeOutputs(out, outputs[addr], "  ")
	}
	return nil
}

func writeOutputs(w io.Writer, outputs map[string]any, indent string) {
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s = %s\n", indent, k, formatValue(outputs[k]))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedAddresses[V any](m map[string]V) []string {
	addrs := make([]string, 0, len(m))
	for addr := range m {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

