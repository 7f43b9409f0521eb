package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/engine"
	"github.com/picklr-io/stagehand/internal/eval"
	"github.com/picklr-io/stagehand/internal/history"
	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/logging"
	"github.com/picklr-io/stagehand/internal/resources"
	"github.com/picklr-io/stagehand/internal/roblox"
	"github.com/picklr-io/stagehand/internal/state"
)

// project locates the declaration a command works on.
type project struct {
	dir  string
	file string // empty means look up eval.ProjectFiles in dir
}

// resolveProject accepts an optional directory or declaration file argument.
func resolveProject(args []string) (*project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if len(args) == 0 {
		return &project{dir: wd}, nil
	}

	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", args[0], err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %s: %w", args[0], err)
	}
	if info.IsDir() {
		return &project{dir: absPath}, nil
	}
	return &project{dir: filepath.Dir(absPath), file: absPath}, nil
}

// desiredResources evaluates the declaration into the desired resource list.
func (p *project) desiredResources(ctx context.Context) ([]*ir.Resource, error) {
	decl, err := eval.NewEvaluator(p.dir).LoadProject(ctx, p.file)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	desired, err := eval.BuildResources(decl, p.dir)
	if err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}
	return desired, nil
}

// path resolves a settings path against the project directory.
func (p *project) path(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.dir, path)
}

func (p *project) workspaces() *state.Workspaces {
	return state.NewWorkspaces(p.path(settings.State.Dir))
}

// backend opens the state backend of the current workspace.
func (p *project) backend(ctx context.Context) (state.Backend, string, error) {
	workspace := p.workspaces().Current()
	cfg := settings.State
	cfg.Dir = p.path(cfg.Dir)

	b, err := state.NewBackend(ctx, cfg, workspace)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open state backend: %w", err)
	}
	return b, workspace, nil
}

// newEngine builds an engine driving the platform client.
func (p *project) newEngine() (*engine.Engine, error) {
	client, err := roblox.NewClient(settings.Roblox)
	if err != nil {
		return nil, err
	}
	platform := engine.NewRetryingPlatform(client, nil)
	eng := engine.NewEngine(resources.NewManager(platform, p.dir))
	eng.Parallelism = settings.Apply.Parallelism
	return eng, nil
}

// plannerEngine builds an engine for planning only; it never reaches the platform.
func plannerEngine() *engine.Engine {
	return engine.NewEngine(nil)
}

// withLock runs fn while holding the state lock.
func withLock(ctx context.Context, backend state.Backend, fn func() error) (err error) {
	if err := backend.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if unlockErr := backend.Unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			err = errors.Join(err, unlockErr)
		}
	}()
	return fn()
}

// recorder persists apply events to the history database. A recorder that
// failed to open logs a warning and records nothing.
type recorder struct {
	store *history.Store
	runID string
}

func (p *project) startRecording(ctx context.Context, workspace, command string) *recorder {
	store, err := history.Open(p.path(settings.History.Path))
	if err != nil {
		logging.Warn("deployment history disabled", "error", err)
		return &recorder{}
	}
	runID, err := store.BeginRun(ctx, workspace, command)
	if err != nil {
		logging.Warn("deployment history disabled", "error", err)
		store.Close()
		return &recorder{}
	}
	return &recorder{store: store, runID: runID}
}

func (r *recorder) record(ctx context.Context, ev engine.ApplyEvent) {
	if r.store == nil {
		return
	}
	err := r.store.Record(ctx, r.runID, history.Event{
		Address:  ev.Address,
		Action:   ev.Action,
		Status:   ev.Status,
		Duration: ev.Duration,
		Error:    ev.Error,
	})
	if err != nil {
		logging.Warn("failed to record deployment event", "address", ev.Address, "error", err)
	}
}

func (r *recorder) finish(ctx context.Context, serial int, runErr error) {
	if r.store == nil {
		return
	}
	if err := r.store.FinishRun(ctx, r.runID, serial, runErr); err != nil {
		logging.Warn("failed to record deployment result", "error", err)
	}
	r.store.Close()
}

// applyPlan applies a plan with progress output, history and state persistence.
// State is written even when the apply fails so successful changes are kept.
func applyPlan(cmd *cobra.Command, p *project, eng *engine.Engine, backend state.Backend, workspace string, plan *ir.Plan, current *ir.State) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	rec := p.startRecording(ctx, workspace, cmd.Name())

	fmt.Fprintf(out, "\nApplying %d changes...\n", len(plan.Changes))
	var mu sync.Mutex
	newState, applyErr := eng.ApplyPlanWithCallback(ctx, plan, current, func(ev engine.ApplyEvent) {
		mu.Lock()
		defer mu.Unlock()
		renderEvent(out, ev)
		rec.record(context.WithoutCancel(ctx), ev)
	})
	rec.finish(context.WithoutCancel(ctx), newState.Serial, applyErr)

	if err := backend.Write(context.WithoutCancel(ctx), newState); err != nil {
		return errors.Join(applyErr, fmt.Errorf("failed to write state: %w", err))
	}
	if applyErr != nil {
		return fmt.Errorf("apply failed: %w", applyErr)
	}
	return nil
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s Enter 'yes' to continue: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
