package ir

import "strings"

// RefPrefix marks a string input as a reference to another resource's output.
// The full form is ptr://<type>/<name>/<attribute>.
const RefPrefix = "ptr://"

// Resource is one desired resource produced from the project declaration.
type Resource struct {
	Type      string         `json:"type" yaml:"type"`
	Name      string         `json:"name" yaml:"name"`
	Inputs    map[string]any `json:"inputs" yaml:"inputs"` // may hold ptr:// references
	DependsOn []string       `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

// Address returns the resource address, <type>/<name>.
func (r *Resource) Address() string {
	return Address(r.Type, r.Name)
}

// Address joins a resource type and name. Names may contain slashes
// (thumbnails are named after their file path); types never do.
func Address(typ, name string) string {
	return typ + "/" + name
}

// SplitAddress is the inverse of Address.
func SplitAddress(addr string) (typ, name string, ok bool) {
	return strings.Cut(addr, "/")
}

// Ref builds a reference to attr of the resource at typ/name.
func Ref(typ, name, attr string) string {
	return RefPrefix + Address(typ, name) + "/" + attr
}

// ParseRef splits a reference into the referenced address and attribute.
func ParseRef(ref string) (addr, attr string, ok bool) {
	path, found := strings.CutPrefix(ref, RefPrefix)
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	addr, attr = path[:i], path[i+1:]
	if _, _, ok := SplitAddress(addr); !ok {
		return "", "", false
	}
	return addr, attr, true
}
