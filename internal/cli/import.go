package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/resources"
)

var importCmd = &cobra.Command{
	Use:   "import <experience-id> [project]",
	Short: "Adopt an existing experience into state",
	Long: `Records an existing experience and its start place in state so that
Stagehand manages them from now on. The declaration must already describe
the start place; everything else it declares is created on the next deploy.

Example:
  stagehand import 1234567890`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	experienceID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid experience id %q: %w", args[0], err)
	}

	p, err := resolveProject(args[1:])
	if err != nil {
		return err
	}
	desired, err := p.desiredResources(ctx)
	if err != nil {
		return err
	}

	experienceAddr := ir.Address(string(resources.Experience), resources.SingletonResourceName)
	startAddr := ir.Address(string(resources.Place), ir.StartPlaceName)
	var adopted []*ir.Resource
	for _, res := range desired {
		if addr := res.Address(); addr == experienceAddr || addr == startAddr {
			adopted = append(adopted, res)
		}
	}

	eng, err := p.newEngine()
	if err != nil {
		return err
	}
	backend, _, err := p.backend(ctx)
	if err != nil {
		return err
	}

	return withLock(ctx, backend, func() error {
		current, err := backend.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}

		fmt.Fprintf(out, "Importing experience %d...\n", experienceID)
		extra := map[string]map[string]any{
			experienceAddr: {"assetId": experienceID},
		}
		if err := eng.Adopt(ctx, adopted, extra, current); err != nil {
			return err
		}

		if err := backend.Write(ctx, current); err != nil {
			return fmt.Errorf("failed to write state: %w", err)
		}
		fmt.Fprintf(out, "Imported %s and %s.\n", experienceAddr, startAddr)
		fmt.Fprintln(out, "Run 'stagehand plan' to see what remains to deploy.")
		return nil
	})
}
