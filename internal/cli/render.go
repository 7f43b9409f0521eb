package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/picklr-io/stagehand/internal/engine"
	"github.com/picklr-io/stagehand/internal/ir"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// colorize returns code unless colors are disabled.
func colorize(code string) string {
	if noColor {
		return ""
	}
	return code
}

func actionStyle(action string) (symbol, color string) {
	switch action {
	case ir.ActionCreate:
		return "+", colorGreen
	case ir.ActionDelete:
		return "-", colorRed
	case ir.ActionForget:
		return "~", colorCyan
	case ir.ActionUpdate:
		return "~", colorYellow
	}
	return " ", colorReset
}

func actionVerb(action string) string {
	switch action {
	case ir.ActionCreate:
		return "created"
	case ir.ActionUpdate:
		return "updated"
	case ir.ActionDelete:
		return "deleted"
	case ir.ActionForget:
		return "removed from state (deleted with its parent)"
	}
	return "left unchanged"
}

// renderPlanChanges writes the detailed change list for a plan.
func renderPlanChanges(w io.Writer, plan *ir.Plan) {
	for _, change := range plan.Changes {
		symbol, code := actionStyle(change.Action)
		color, reset := colorize(code), colorize(colorReset)

		verb := actionVerb(change.Action)
		if change.Action == ir.ActionUpdate && change.Prior != nil && change.Prior.Tainted {
			verb += " (tainted)"
		}
		fmt.Fprintf(w, "\n%s  # %s will be %s%s\n", color, change.Address, verb, reset)
		fmt.Fprintf(w, "%s  %s %s {%s\n", color, symbol, change.Address, reset)
		renderPropertyDiff(w, change.Diff)
		fmt.Fprintf(w, "%s    }%s\n", color, reset)
	}
}

// renderPropertyDiff writes property diffs sorted by key.
func renderPropertyDiff(w io.Writer, diff map[string]*ir.PropertyDiff) {
	keys := make([]string, 0, len(diff))
	for k := range diff {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	reset := colorize(colorReset)
	for _, key := range keys {
		d := diff[key]
		switch d.Action {
		case "create":
			fmt.Fprintf(w, "%s      + %s = %s%s\n", colorize(colorGreen), key, formatValue(d.After), reset)
		case "delete":
			fmt.Fprintf(w, "%s      - %s = %s%s\n", colorize(colorRed), key, formatValue(d.Before), reset)
		case "update":
			fmt.Fprintf(w, "%s      ~ %s = %s -> %s%s\n", colorize(colorYellow), key, formatValue(d.Before), formatValue(d.After), reset)
		default:
			fmt.Fprintf(w, "        %s = %s\n", key, formatValue(d.After))
		}
	}
}

// formatValue renders a value the way it would be written in JSON.
func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// renderPlanSummary writes the plan summary counts.
func renderPlanSummary(w io.Writer, plan *ir.Plan) {
	s := plan.Summary
	fmt.Fprintf(w, "\nPlan: %d to create, %d to update, %d to delete, %d to forget, %d unchanged.\n",
		s.Create, s.Update, s.Delete, s.Forget, s.NoOp)
}

// renderPlan writes the full human-readable plan.
func renderPlan(w io.Writer, plan *ir.Plan) {
	if !plan.HasChanges() {
		fmt.Fprintln(w, "\nNo changes. The experience matches the declaration.")
		return
	}
	fmt.Fprintln(w, "\nStagehand will perform the following actions:")
	renderPlanChanges(w, plan)
	renderPlanSummary(w, plan)
}

// renderEvent writes one apply progress line. Started events are omitted.
func renderEvent(w io.Writer, ev engine.ApplyEvent) {
	reset := colorize(colorReset)
	switch ev.Status {
	case engine.StatusCompleted:
		fmt.Fprintf(w, "%s  ✓ %s%s (%s, %s)\n", colorize(colorGreen), ev.Address, reset, ev.Action, ev.Duration.Round(time.Millisecond))
	case engine.StatusUnchanged:
		fmt.Fprintf(w, "  = %s (no change after resolving references)\n", ev.Address)
	case engine.StatusSkipped:
		fmt.Fprintf(w, "%s  - %s%s (skipped: a dependency failed)\n", colorize(colorYellow), ev.Address, reset)
	case engine.StatusFailed:
		fmt.Fprintf(w, "%s  ✗ %s%s: %v\n", colorize(colorRed), ev.Address, reset, ev.Error)
	}
}
