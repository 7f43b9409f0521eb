package ir

// Change actions.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionForget = "FORGET" // dropped from state with no platform call
	ActionNoop   = "NOOP"
)

// Plan represents a calculated execution plan.
type Plan struct {
	Metadata *PlanMetadata     `json:"metadata"`
	Changes  []*ResourceChange `json:"changes"`
	Summary  *PlanSummary      `json:"summary"`
}

type PlanMetadata struct {
	Timestamp string   `json:"timestamp"`
	Workspace string   `json:"workspace,omitempty"`
	Serial    int      `json:"serial"`
	Targets   []string `json:"targets,omitempty"`
}

// ResourceChange is one step of a plan. Desired is nil for DELETE and FORGET;
// Prior is nil for CREATE.
type ResourceChange struct {
	Address string                   `json:"address"`
	Action  string                   `json:"action"`
	Desired *Resource                `json:"desired,omitempty"`
	Prior   *ResourceState           `json:"prior,omitempty"`
	Diff    map[string]*PropertyDiff `json:"diff,omitempty"`
}

type PropertyDiff struct {
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
	Action string `json:"action"` // "create", "update", "delete"
}

type PlanSummary struct {
	Create int `json:"create"`
	Update int `json:"update"`
	Delete int `json:"delete"`
	Forget int `json:"forget"`
	NoOp   int `json:"noop"`
}

// HasChanges reports whether applying the plan would do anything.
func (p *Plan) HasChanges() bool {
	return len(p.Changes) > 0
}
