package ir

// StateVersion is the state file format version written by this build.
const StateVersion = 1

// State represents the persistent state.
type State struct {
	Version   int              `json:"version" yaml:"version"`
	Serial    int              `json:"serial" yaml:"serial"`
	Lineage   string           `json:"lineage" yaml:"lineage"`
	Resources []*ResourceState `json:"resources" yaml:"resources"`
}

// ResourceState records a deployed resource. Inputs are stored resolved, so
// they never hold references; InputsHash is taken over the declared inputs.
type ResourceState struct {
	Type         string         `json:"type" yaml:"type"`
	Name         string         `json:"name" yaml:"name"`
	Inputs       map[string]any `json:"inputs" yaml:"inputs"`
	InputsHash   string         `json:"inputsHash" yaml:"inputsHash"`
	Outputs      map[string]any `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	// Tainted forces an update on the next deploy even when nothing changed.
	Tainted      bool           `json:"tainted,omitempty" yaml:"tainted,omitempty"`
}

func (r *ResourceState) Address() string {
	return Address(r.Type, r.Name)
}

// Find returns the resource at addr, or nil.
func (s *State) Find(addr string) *ResourceState {
	for _, res := range s.Resources {
		if res.Address() == addr {
			return res
		}
	}
	return nil
}

// Remove drops the resource at addr and reports whether it was present.
func (s *State) Remove(addr string) bool {
	for i, res := range s.Resources {
		if res.Address() == addr {
			s.Resources = append(s.Resources[:i], s.Resources[i+1:]...)
			return true
		}
	}
	return false
}
