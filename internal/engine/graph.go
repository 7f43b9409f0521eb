package engine

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/picklr-io/stagehand/internal/ir"
)

// DAG represents a directed acyclic graph of resources for dependency ordering.
type DAG struct {
	nodes    map[string]*dagNode
	order    []string // topological order (creation order)
	revOrder []string // reverse topological order (destruction order)
}

type dagNode struct {
	addr     string
	edges    []string // resources this node depends on
	revEdges []string // resources that depend on this node
}

// BuildDAG constructs a dependency graph from resources.
// It resolves both explicit DependsOn and implicit ptr:// references.
// Edges to addresses outside the list are ignored.
func BuildDAG(resources []*ir.Resource) (*DAG, error) {
	dag := &DAG{
		nodes: make(map[string]*dagNode),
	}

	for _, res := range resources {
		addr := res.Address()
		if _, dup := dag.nodes[addr]; dup {
			return nil, fmt.Errorf("duplicate resource address %s", addr)
		}
		dag.nodes[addr] = &dagNode{addr: addr}
	}

	for _, res := range resources {
		node := dag.nodes[res.Address()]
		for _, dep := range resourceDeps(res) {
			if _, ok := dag.nodes[dep]; ok {
				node.addEdge(dep)
			}
		}
	}

	if err := dag.finish(); err != nil {
		return nil, err
	}
	return dag, nil
}

// BuildDAGFromState constructs a dependency graph from state resources (for destroy).
func BuildDAGFromState(resources []*ir.ResourceState) (*DAG, error) {
	dag := &DAG{
		nodes: make(map[string]*dagNode),
	}

	for _, res := range resources {
		dag.nodes[res.Address()] = &dagNode{addr: res.Address()}
	}
	for _, res := range resources {
		node := dag.nodes[res.Address()]
		for _, dep := range res.Dependencies {
			if _, ok := dag.nodes[dep]; ok {
				node.addEdge(dep)
			}
		}
	}

	if err := dag.finish(); err != nil {
		return nil, err
	}
	return dag, nil
}

func (n *dagNode) addEdge(dep string) {
	if dep != n.addr && !slices.Contains(n.edges, dep) {
		n.edges = append(n.edges, dep)
	}
}

func (d *DAG) finish() error {
	for addr, node := range d.nodes {
		sort.Strings(node.edges)
		for _, dep := range node.edges {
			d.nodes[dep].revEdges = append(d.nodes[dep].revEdges, addr)
		}
	}
	for _, node := range d.nodes {
		sort.Strings(node.revEdges)
	}

	order, err := d.topoSort()
	if err != nil {
		return err
	}
	d.order = order

	d.revOrder = make([]string, len(order))
	for i, addr := range order {
		d.revOrder[len(order)-1-i] = addr
	}
	return nil
}

// CreationOrder returns resources in dependency-respecting creation order.
func (d *DAG) CreationOrder() []string {
	return d.order
}

// DestructionOrder returns resources in reverse dependency order (safe for deletion).
func (d *DAG) DestructionOrder() []string {
	return d.revOrder
}

// topoSort performs Kahn's algorithm. Ties are broken by address so the
// order is stable between runs.
func (d *DAG) topoSort() ([]string, error) {
	inDegree := make(map[string]int, len(d.nodes))
	var queue []string
	for addr, node := range d.nodes {
		inDegree[addr] = len(node.edges)
		if inDegree[addr] == 0 {
			queue = append(queue, addr)
		}
	}
	sort.Strings(queue)

	sorted := make([]string, 0, len(d.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)

		for _, dependent := range d.nodes[node].revEdges {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) != len(d.nodes) {
		var stuck []string
		for addr, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, addr)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("dependency cycle detected in resource graph: %s", strings.Join(stuck, ", "))
	}

	return sorted, nil
}

// Dependencies returns the direct dependencies of addr.
func (d *DAG) Dependencies(addr string) []string {
	if node, ok := d.nodes[addr]; ok {
		return node.edges
	}
	return nil
}

// Dependents returns the resources that depend directly on addr.
func (d *DAG) Dependents(addr string) []string {
	if node, ok := d.nodes[addr]; ok {
		return node.revEdges
	}
	return nil
}

// TransitiveDeps returns every resource addr depends on, directly or not.
func (d *DAG) TransitiveDeps(addr string) []string {
	seen := make(map[string]bool)
	var visit func(string)
	visit = func(a string) {
		for _, dep := range d.Dependencies(a) {
			if !seen[dep] {
				seen[dep] = true
				visit(dep)
			}
		}
	}
	visit(addr)

	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// WriteDOT renders the graph in Graphviz DOT format, edges pointing from a
// resource to what it depends on.
func (d *DAG) WriteDOT(w io.Writer) {
	fmt.Fprintln(w, "digraph stagehand {")
	fmt.Fprintln(w, "  rankdir = \"BT\";")
	fmt.Fprintln(w, "  node [shape = rect];")
	fmt.Fprintln(w)
	for _, addr := range d.order {
		fmt.Fprintf(w, "  %q;\n", addr)
	}
	fmt.Fprintln(w)
	for _, addr := range d.order {
		for _, dep := range d.nodes[addr].edges {
			fmt.Fprintf(w, "  %q -> %q;\n", addr, dep)
		}
	}
	fmt.Fprintln(w, "}")
}

// resourceDeps returns the explicit and referenced dependencies of res.
func resourceDeps(res *ir.Resource) []string {
	deps := append([]string{}, res.DependsOn...)
	for _, ref := range extractPtrRefs(res.Inputs) {
		if addr, _, ok := ir.ParseRef(ref); ok && !slices.Contains(deps, addr) {
			deps = append(deps, addr)
		}
	}
	sort.Strings(deps)
	return deps
}

// extractPtrRefs extracts all ptr:// references from an input value.
func extractPtrRefs(v any) []string {
	var refs []string
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(val, ir.RefPrefix) {
			refs = append(refs, val)
		}
	case map[string]any:
		for _, v := range val {
			refs = append(refs, extractPtrRefs(v)...)
		}
	case map[any]any:
		for _, v := range val {
			refs = append(refs, extractPtrRefs(v)...)
		}
	case []any:
		for _, v := range val {
			refs = append(refs, extractPtrRefs(v)...)
		}
	}
	return refs
}
