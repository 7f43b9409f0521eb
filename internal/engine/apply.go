package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/logging"
	"github.com/picklr-io/stagehand/internal/resources"
)

// ErrUnresolvedReference is returned when an input references an output that
// is not in state.
var ErrUnresolvedReference = errors.New("unresolved reference")

// Apply event statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"   // not attempted because a dependency failed
	StatusUnchanged = "unchanged" // update found nothing to change once references resolved
)

// ApplyEvent represents a progress event during apply.
type ApplyEvent struct {
	Address  string
	Action   string
	Status   string
	Duration time.Duration
	Error    error
}

// ApplyCallback is called for each apply event if set.
type ApplyCallback func(event ApplyEvent)

// ApplyPlan executes a plan and updates the state.
func (e *Engine) ApplyPlan(ctx context.Context, plan *ir.Plan, state *ir.State) (*ir.State, error) {
	return e.ApplyPlanWithCallback(ctx, plan, state, nil)
}

// ApplyPlanWithCallback executes a plan with progress event callbacks.
// Creates and updates run first, in parallel where dependencies allow; deletes
// follow, dependents before what they depend on. If e.ContinueOnError is true,
// apply continues past individual failures and returns them joined.
// The returned state reflects every change that succeeded, even on error.
func (e *Engine) ApplyPlanWithCallback(ctx context.Context, plan *ir.Plan, state *ir.State, callback ApplyCallback) (*ir.State, error) {
	var mu sync.Mutex
	var errs []error

	emit := func(event ApplyEvent) {
		if callback != nil {
			callback(event)
		}
	}

	var createUpdates, deletes []*ir.ResourceChange
	for _, change := range plan.Changes {
		switch change.Action {
		case ir.ActionDelete, ir.ActionForget:
			deletes = append(deletes, change)
		case ir.ActionCreate, ir.ActionUpdate:
			createUpdates = append(createUpdates, change)
		}
	}

	if err := e.applyParallel(ctx, createUpdates, createDeps(createUpdates), state, &mu, emit); err != nil {
		if !e.ContinueOnError {
			state.Serial++
			return state, err
		}
		errs = append(errs, err)
	}

	if err := e.applyParallel(ctx, deletes, deleteDeps(deletes), state, &mu, emit); err != nil {
		if !e.ContinueOnError {
			state.Serial++
			return state, err
		}
		errs = append(errs, err)
	}

	state.Serial++

	if len(errs) > 0 {
		return state, errors.Join(errs...)
	}
	return state, nil
}

// createDeps maps each create or update to the changes it must wait for.
func createDeps(changes []*ir.ResourceChange) map[string][]string {
	inPlan := make(map[string]bool, len(changes))
	for _, c := range changes {
		inPlan[c.Address] = true
	}
	deps := make(map[string][]string, len(changes))
	for _, c := range changes {
		for _, dep := range resourceDeps(c.Desired) {
			if inPlan[dep] {
				deps[c.Address] = append(deps[c.Address], dep)
			}
		}
	}
	return deps
}

// deleteDeps inverts the state dependencies: a resource is deleted only after
// everything depending on it is gone.
func deleteDeps(changes []*ir.ResourceChange) map[string][]string {
	inPlan := make(map[string]bool, len(changes))
	for _, c := range changes {
		inPlan[c.Address] = true
	}
	deps := make(map[string][]string, len(changes))
	for _, c := range changes {
		for _, dep := range c.Prior.Dependencies {
			if inPlan[dep] {
				deps[dep] = append(deps[dep], c.Address)
			}
		}
	}
	return deps
}

// applyParallel applies changes concurrently. A change starts once every
// change in deps[address] has completed, and is skipped if one failed.
func (e *Engine) applyParallel(ctx context.Context, changes []*ir.ResourceChange, deps map[string][]string, state *ir.State, mu *sync.Mutex, emit func(ApplyEvent)) error {
	if len(changes) == 0 {
		return nil
	}

	completed := make(map[string]bool)
	failed := make(map[string]bool)
	completedMu := sync.Mutex{}
	completedCond := sync.NewCond(&completedMu)
	var firstErr error
	var allErrs []error
	sem := make(chan struct{}, e.parallelism())

	var wg sync.WaitGroup

	for _, change := range changes {
		wg.Add(1)
		go func(c *ir.ResourceChange) {
			defer wg.Done()

			// Wait for dependencies to complete
			completedMu.Lock()
			for {
				if firstErr != nil && !e.ContinueOnError {
					completedMu.Unlock()
					return
				}
				allDepsReady := true
				depFailed := false
				for _, dep := range deps[c.Address] {
					if failed[dep] {
						depFailed = true
						break
					}
					if !completed[dep] {
						allDepsReady = false
						break
					}
				}
				if depFailed {
					failed[c.Address] = true
					completedMu.Unlock()
					completedCond.Broadcast()
					emit(ApplyEvent{Address: c.Address, Action: c.Action, Status: StatusSkipped})
					return
				}
				if allDepsReady {
					break
				}
				completedCond.Wait()
			}
			completedMu.Unlock()

			if err := ctx.Err(); err != nil {
				completedMu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("apply cancelled: %w", err)
					allErrs = append(allErrs, firstErr)
				}
				failed[c.Address] = true
				completedMu.Unlock()
				completedCond.Broadcast()
				return
			}

			// Acquire semaphore slot
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			emit(ApplyEvent{Address: c.Address, Action: c.Action, Status: StatusStarted})

			status, err := e.applyChange(ctx, c, state, mu)
			if err != nil {
				emit(ApplyEvent{Address: c.Address, Action: c.Action, Status: StatusFailed, Duration: time.Since(start), Error: err})
				completedMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				allErrs = append(allErrs, err)
				failed[c.Address] = true
				completedMu.Unlock()
				completedCond.Broadcast()
				return
			}

			emit(ApplyEvent{Address: c.Address, Action: c.Action, Status: status, Duration: time.Since(start)})

			completedMu.Lock()
			completed[c.Address] = true
			completedMu.Unlock()
			completedCond.Broadcast()
		}(change)
	}

	wg.Wait()

	if e.ContinueOnError && len(allErrs) > 0 {
		return fmt.Errorf("%d resource(s) failed: %w", len(allErrs), errors.Join(allErrs...))
	}
	return firstErr
}

func (e *Engine) applyChange(ctx context.Context, change *ir.ResourceChange, state *ir.State, mu *sync.Mutex) (string, error) {
	addr := change.Address
	logging.Debug("applying change", "address", addr, "action", change.Action)

	ctx, cancel := WithTimeout(ctx, e.Timeout)
	defer cancel()

	switch change.Action {
	case ir.ActionCreate, ir.ActionUpdate:
		return e.applyUpsert(ctx, change, state, mu)
	case ir.ActionDelete:
		return e.applyDelete(ctx, change, state, mu)
	case ir.ActionForget:
		mu.Lock()
		state.Remove(addr)
		mu.Unlock()
		logging.Info("resource removed from state without deletion", "address", addr)
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown action %s for %s", change.Action, addr)
}

func (e *Engine) applyUpsert(ctx context.Context, change *ir.ResourceChange, state *ir.State, mu *sync.Mutex) (string, error) {
	addr := change.Address
	res := change.Desired
	typ := resources.ResourceType(res.Type)
	if !resources.IsKnownType(res.Type) {
		return "", fmt.Errorf("unknown resource type %q for %s", res.Type, addr)
	}

	hash, err := HashInputs(res.Inputs)
	if err != nil {
		return "", fmt.Errorf("failed to hash inputs of %s: %w", addr, err)
	}

	mu.Lock()
	resolved, missing := resolveReferences(res.Inputs, state)
	prior := state.Find(addr)
	mu.Unlock()
	if len(missing) > 0 {
		return "", fmt.Errorf("%w in %s: %s", ErrUnresolvedReference, addr, strings.Join(missing, ", "))
	}

	next := &ir.ResourceState{
		Type:         res.Type,
		Name:         res.Name,
		Inputs:       resolved,
		InputsHash:   hash,
		Dependencies: resourceDeps(res),
	}

	if prior != nil && !prior.Tainted && inputsEqual(prior.Inputs, resolved) {
		next.Outputs = prior.Outputs
		e.storeResource(state, mu, next)
		return StatusUnchanged, nil
	}

	var outputs resources.Document
	if prior == nil {
		outputs, err = e.reconciler.Create(ctx, typ, resolved)
	} else {
		outputs, err = e.reconciler.Update(ctx, typ, resolved, prior.Outputs)
	}
	if err != nil {
		return "", fmt.Errorf("%s failed for %s: %w", strings.ToLower(change.Action), addr, err)
	}

	next.Outputs = outputs
	e.storeResource(state, mu, next)
	return StatusCompleted, nil
}

func (e *Engine) applyDelete(ctx context.Context, change *ir.ResourceChange, state *ir.State, mu *sync.Mutex) (string, error) {
	addr := change.Address

	mu.Lock()
	prior := state.Find(addr)
	mu.Unlock()
	if prior == nil {
		return StatusCompleted, nil
	}
	if !resources.IsKnownType(prior.Type) {
		return "", fmt.Errorf("unknown resource type %q for %s", prior.Type, addr)
	}

	if err := e.reconciler.Delete(ctx, resources.ResourceType(prior.Type), prior.Inputs, prior.Outputs); err != nil {
		return "", fmt.Errorf("delete failed for %s: %w", addr, err)
	}

	mu.Lock()
	state.Remove(addr)
	mu.Unlock()
	return StatusCompleted, nil
}

func (e *Engine) storeResource(state *ir.State, mu *sync.Mutex, res *ir.ResourceState) {
	mu.Lock()
	defer mu.Unlock()
	for i, existing := range state.Resources {
		if existing.Address() == res.Address() {
			state.Resources[i] = res
			return
		}
	}
	state.Resources = append(state.Resources, res)
}

// resolveReferences substitutes ptr:// references with outputs from state.
// References that do not resolve are left in place and returned, sorted.
func resolveReferences(inputs map[string]any, state *ir.State) (map[string]any, []string) {
	var missing []string
	var resolve func(any) any
	resolve = func(val any) any {
		switch v := val.(type) {
		case string:
			addr, attr, ok := ir.ParseRef(v)
			if !ok {
				return v
			}
			if res := state.Find(addr); res != nil {
				if out, ok := res.Outputs[attr]; ok {
					return out
				}
			}
			missing = append(missing, v)
			return v
		case map[string]any:
			newMap := make(map[string]any, len(v))
			for k, item := range v {
				newMap[k] = resolve(item)
			}
			return newMap
		case []any:
			newSlice := make([]any, len(v))
			for i, item := range v {
				newSlice[i] = resolve(item)
			}
			return newSlice
		default:
			return v
		}
	}

	if inputs == nil {
		return nil, nil
	}
	resolved := resolve(inputs).(map[string]any)
	sort.Strings(missing)
	return resolved, missing
}
