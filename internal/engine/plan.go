package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/logging"
	"github.com/picklr-io/stagehand/internal/resources"
)

// CreatePlan generates an execution plan by comparing desired resources with current state.
func (e *Engine) CreatePlan(ctx context.Context, desired []*ir.Resource, state *ir.State) (*ir.Plan, error) {
	return e.CreatePlanWithTargets(ctx, desired, state, nil)
}

// CreatePlanWithTargets generates a plan filtered to specific resource addresses
// and their transitive dependencies. If targets is empty, all resources are planned.
func (e *Engine) CreatePlanWithTargets(ctx context.Context, desired []*ir.Resource, state *ir.State, targets []string) (*ir.Plan, error) {
	logging.Debug("creating plan", "resources", len(desired), "state_resources", len(state.Resources), "targets", len(targets))
	plan := &ir.Plan{
		Metadata: &ir.PlanMetadata{
			Timestamp: e.now().UTC().Format(time.RFC3339),
			Serial:    state.Serial,
			Targets:   targets,
		},
		Changes: []*ir.ResourceChange{},
		Summary: &ir.PlanSummary{},
	}

	if err := validateTypes(desired, state); err != nil {
		return nil, err
	}

	// 1. Build dependency graphs for ordering
	dag, err := BuildDAG(desired)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	stateDAG, err := BuildDAGFromState(state.Resources)
	if err != nil {
		return nil, fmt.Errorf("failed to build state dependency graph: %w", err)
	}

	// 2. Lookup maps
	stateMap := make(map[string]*ir.ResourceState, len(state.Resources))
	for _, res := range state.Resources {
		stateMap[res.Address()] = res
	}
	configByAddr := make(map[string]*ir.Resource, len(desired))
	for _, res := range desired {
		configByAddr[res.Address()] = res
	}

	// 3. Build target set (if targets specified, include their dependencies)
	var targetSet map[string]bool
	if len(targets) > 0 {
		targetSet = make(map[string]bool)
		for _, t := range targets {
			if _, inConfig := configByAddr[t]; !inConfig {
				if _, inState := stateMap[t]; !inState {
					return nil, fmt.Errorf("target %s matches no resource", t)
				}
			}
			targetSet[t] = true
			for _, dep := range dag.TransitiveDeps(t) {
				targetSet[dep] = true
			}
		}
	}

	// 4. Desired resources in dependency order
	changed := make(map[string]bool)
	for _, addr := range dag.CreationOrder() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := configByAddr[addr]

		if targetSet != nil && !targetSet[addr] {
			plan.Summary.NoOp++
			continue
		}

		prior, exists := stateMap[addr]
		if !exists {
			changed[addr] = true
			plan.Changes = append(plan.Changes, &ir.ResourceChange{
				Address: addr,
				Action:  ir.ActionCreate,
				Desired: res,
				Diff:    buildCreateDiff(previewInputs(res.Inputs, state)),
			})
			plan.Summary.Create++
			continue
		}

		hash, err := HashInputs(res.Inputs)
		if err != nil {
			return nil, fmt.Errorf("failed to hash inputs of %s: %w", addr, err)
		}
		depChanged := slices.ContainsFunc(dag.Dependencies(addr), func(dep string) bool { return changed[dep] })
		if hash == prior.InputsHash && !depChanged && !prior.Tainted {
			plan.Summary.NoOp++
			continue
		}

		changed[addr] = true
		plan.Changes = append(plan.Changes, &ir.ResourceChange{
			Address: addr,
			Action:  ir.ActionUpdate,
			Desired: res,
			Prior:   prior,
			Diff:    buildPropertyDiff(prior.Inputs, previewInputs(res.Inputs, state)),
		})
		plan.Summary.Update++
	}

	// 5. Deletions (resources in state but not in config), dependents first
	deleting := make(map[string]bool)
	for _, res := range state.Resources {
		addr := res.Address()
		if _, ok := configByAddr[addr]; ok {
			continue
		}
		if targetSet != nil && !targetSet[addr] {
			continue
		}
		deleting[addr] = true
	}

	for _, addr := range stateDAG.DestructionOrder() {
		if !deleting[addr] {
			continue
		}
		prior := stateMap[addr]
		action := ir.ActionDelete
		if resources.OwnedByParent(resources.ResourceType(prior.Type), prior.Inputs) &&
			slices.ContainsFunc(prior.Dependencies, func(dep string) bool { return deleting[dep] }) {
			action = ir.ActionForget
		}

		plan.Changes = append(plan.Changes, &ir.ResourceChange{
			Address: addr,
			Action:  action,
			Prior:   prior,
			Diff:    buildDeleteDiff(prior.Inputs),
		})
		if action == ir.ActionForget {
			plan.Summary.Forget++
		} else {
			plan.Summary.Delete++
		}
	}

	return plan, nil
}

// validateTypes rejects resource types the reconciler does not handle before
// anything reaches it.
func validateTypes(desired []*ir.Resource, state *ir.State) error {
	for _, res := range desired {
		if !resources.IsKnownType(res.Type) {
			return fmt.Errorf("unknown resource type %q for %s", res.Type, res.Address())
		}
	}
	for _, res := range state.Resources {
		if !resources.IsKnownType(res.Type) {
			return fmt.Errorf("unknown resource type %q in state for %s", res.Type, res.Address())
		}
	}
	return nil
}

// HashInputs returns a stable digest of declared inputs. References are hashed
// as written, so a change in a referenced output does not alter the hash.
func HashInputs(inputs map[string]any) (string, error) {
	data, err := canonicalJSON(inputs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON encodes v with sorted keys and numeric types erased, so that
// values read back from a state file compare equal to freshly built ones.
func canonicalJSON(v any) ([]byte, error) {
	return json.Marshal(normalizeValue(v))
}

func inputsEqual(a, b map[string]any) bool {
	ja, errA := canonicalJSON(a)
	jb, errB := canonicalJSON(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}

// previewInputs substitutes references that already resolve against state,
// leaving the rest as written.
func previewInputs(inputs map[string]any, state *ir.State) map[string]any {
	resolved, _ := resolveReferences(inputs, state)
	return resolved
}

// buildPropertyDiff compares prior and desired properties and returns a diff map.
func buildPropertyDiff(prior, desired map[string]any) map[string]*ir.PropertyDiff {
	diff := make(map[string]*ir.PropertyDiff)

	allKeys := make(map[string]bool)
	for k := range prior {
		allKeys[k] = true
	}
	for k := range desired {
		allKeys[k] = true
	}

	for k := range allKeys {
		priorVal, inPrior := prior[k]
		desiredVal, inDesired := desired[k]

		if !inPrior {
			diff[k] = &ir.PropertyDiff{
				After:  desiredVal,
				Action: "create",
			}
		} else if !inDesired {
			diff[k] = &ir.PropertyDiff{
				Before: priorVal,
				Action: "delete",
			}
		} else if !valuesEqual(priorVal, desiredVal) {
			diff[k] = &ir.PropertyDiff{
				Before: priorVal,
				After:  desiredVal,
				Action: "update",
			}
		}
	}

	return diff
}

func valuesEqual(a, b any) bool {
	ja, errA := canonicalJSON(a)
	jb, errB := canonicalJSON(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return string(ja) == string(jb)
}

func buildCreateDiff(props map[string]any) map[string]*ir.PropertyDiff {
	diff := make(map[string]*ir.PropertyDiff)
	for k, v := range props {
		diff[k] = &ir.PropertyDiff{
			After:  v,
			Action: "create",
		}
	}
	return diff
}

func buildDeleteDiff(props map[string]any) map[string]*ir.PropertyDiff {
	diff := make(map[string]*ir.PropertyDiff)
	for k, v := range props {
		diff[k] = &ir.PropertyDiff{
			Before: v,
			Action: "delete",
		}
	}
	return diff
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[any]any:
		newMap := make(map[string]any)
		for k, v := range val {
			newMap[fmt.Sprintf("%v", k)] = normalizeValue(v)
		}
		return newMap
	case map[string]any:
		newMap := make(map[string]any)
		for k, v := range val {
			newMap[k] = normalizeValue(v)
		}
		return newMap
	case resources.Document:
		return normalizeValue(map[string]any(val))
	case []any:
		newSlice := make([]any, len(val))
		for i, v := range val {
			newSlice[i] = normalizeValue(v)
		}
		return newSlice
	default:
		return val
	}
}
