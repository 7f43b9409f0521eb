package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/history"
)

var (
	historyLimit  int
	historyAll    bool
	historyEvents bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent deployments",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "Include every workspace")
	historyCmd.Flags().BoolVarP(&historyEvents, "events", "e", false, "Show per-resource events")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	p, err := resolveProject(nil)
	if err != nil {
		return err
	}
	store, err := history.Open(p.path(settings.History.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	workspace := p.workspaces().Current()
	if historyAll {
		workspace = ""
	}
	runs, err := store.Recent(ctx, workspace, historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No deployments recorded.")
		return nil
	}
	for _, run := range runs {
		renderRun(out, run, historyEvents)
	}
	return nil
}

func renderRun(w io.Writer, run *history.Run, events bool) {
	color := colorize(colorGreen)
	switch run.Status {
	case history.RunFailed:
		color = colorize(colorRed)
	case history.RunRunning:
		color = colorize(colorYellow)
	}

	duration := "-"
	if run.FinishedAt != nil {
		duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
	}
	serial := "-"
	if run.Serial != nil {
		serial = fmt.Sprint(*run.Serial)
	}

	fmt.Fprintf(w, "%s %-9s%s %s  %-8s %-10s serial %-4s %s\n",
		color, run.Status, colorize(colorReset),
		run.StartedAt.Local().Format(time.DateTime), run.Command, run.Workspace, serial, duration)
	if run.Error != "" {
		fmt.Fprintf(w, "    error: %s\n", run.Error)
	}
	if !events {
		return
	}
	for _, ev := range run.Events {
		line := fmt.Sprintf("    %-9s %-6s %s", ev.Status, ev.Action, ev.Address)
		if ev.Error != "" {
			line += ": " + ev.Error
		}
		fmt.Fprintln(w, line)
	}
}
