package engine

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/logging"
	"github.com/picklr-io/stagehand/internal/resources"
)

// Adopt brings existing platform resources under management. Each resource
// is created through the reconciler with extra[address] merged over its
// resolved inputs, which is how an assetId reaches the adopt path. State
// records the declared inputs and their hash only, so the next plan for the
// same project is a no-op for the adopted resources.
func (e *Engine) Adopt(ctx context.Context, desired []*ir.Resource, extra map[string]map[string]any, state *ir.State) error {
	dag, err := BuildDAG(desired)
	if err != nil {
		return err
	}

	byAddr := make(map[string]*ir.Resource, len(desired))
	for _, res := range desired {
		if state.Find(res.Address()) != nil {
			return fmt.Errorf("resource %s already exists in state", res.Address())
		}
		byAddr[res.Address()] = res
	}

	for _, addr := range dag.CreationOrder() {
		res := byAddr[addr]
		if !resources.IsKnownType(res.Type) {
			return fmt.Errorf("unknown resource type %q for %s", res.Type, addr)
		}

		hash, err := HashInputs(res.Inputs)
		if err != nil {
			return fmt.Errorf("failed to hash inputs of %s: %w", addr, err)
		}

		resolved, missing := resolveReferences(res.Inputs, state)
		if len(missing) > 0 {
			return fmt.Errorf("%w in %s: %s", ErrUnresolvedReference, addr, strings.Join(missing, ", "))
		}

		call := maps.Clone(resolved)
		if call == nil {
			call = map[string]any{}
		}
		maps.Copy(call, extra[addr])

		opCtx, cancel := WithTimeout(ctx, e.Timeout)
		outputs, err := e.reconciler.Create(opCtx, resources.ResourceType(res.Type), call)
		cancel()
		if err != nil {
			return fmt.Errorf("import failed for %s: %w", addr, err)
		}

		state.Resources = append(state.Resources, &ir.ResourceState{
			Type:         res.Type,
			Name:         res.Name,
			Inputs:       resolved,
			InputsHash:   hash,
			Outputs:      outputs,
			Dependencies: resourceDeps(res),
		})
		logging.Info("resource imported", "address", addr)
	}

	state.Serial++
	return nil
}
