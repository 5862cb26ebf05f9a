package resolver

import (
	"github.com/ratpm/ratpm/internal/errs"
	"github.com/ratpm/ratpm/internal/model"
)

// DependencyGraph supports the executor's optional pre-apply ordering.
// Nodes are stored by integer index in arena slices rather than as a
// pointer graph, so adjacency lists can hold plain indices (spec §9,
// "use arena storage... rather than pointer graphs").
type DependencyGraph struct {
	specs []model.PackageSpec
	index map[string]int
	edges [][]int
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{index: map[string]int{}}
}

// AddPackage registers spec as a new node and returns its index. Nodes are
// not deduplicated by name: two specs sharing a Name but differing in
// Version are both kept, which is what lets FindConflicts detect them.
// AddDependency and lookups by name resolve to whichever node was added
// most recently under that name.
func (g *DependencyGraph) AddPackage(spec model.PackageSpec) int {
	i := len(g.specs)
	g.specs = append(g.specs, spec)
	g.edges = append(g.edges, nil)
	g.index[spec.Name] = i
	return i
}

// AddDependency records that the package named by u depends on the
// package named by dep: in topological_sort's output, dep precedes u.
// Both names must already have been added via AddPackage.
func (g *DependencyGraph) AddDependency(u, dep string) {
	ui, uok := g.index[u]
	di, dok := g.index[dep]
	if !uok || !dok {
		return
	}
	g.edges[ui] = append(g.edges[ui], di)
}

// TopologicalSort returns the node specs ordered so that every dependency
// precedes its dependent, using Kahn's algorithm: any node with zero
// remaining in-edges is a valid next pick, ties broken by insertion
// order. Cycle detection falls out naturally: if the final sorted length
// is less than the node count, a cycle exists.
func (g *DependencyGraph) TopologicalSort() ([]model.PackageSpec, error) {
	n := len(g.specs)
	inDegree := make([]int, n)
	// Edge direction is u -> dep meaning "dep must come first", i.e. dep
	// has an outgoing edge to u in Kahn's terms. Build the reverse
	// adjacency (dep -> dependents) and count in-degree as the number of
	// dependencies a node still waits on.
	dependents := make([][]int, n)
	for u, outEdges := range g.edges {
		inDegree[u] += len(outEdges)
		for _, dep := range outEdges {
			dependents[dep] = append(dependents[dep], u)
		}
	}

	var queue []int
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]model.PackageSpec, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, g.specs[i])

		for _, dependent := range dependents[i] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != n {
		// spec.md does not list a CircularDependency variant in the
		// closed ErrorKind set; DependencyConflict is the closest
		// existing meaning (the graph cannot be realized as a valid
		// plan) and is reused here rather than inventing a new Kind.
		return nil, errs.NewDependencyConflict("Circular dependency detected")
	}
	return order, nil
}

// ConflictPair is a same-name, different-version node pair reported by
// FindConflicts.
type ConflictPair struct {
	A model.PackageSpec
	B model.PackageSpec
}

// FindConflicts reports every pair of nodes sharing a Name but differing
// in Version.
func (g *DependencyGraph) FindConflicts() []ConflictPair {
	byName := map[string][]model.PackageSpec{}
	for _, s := range g.specs {
		byName[s.Name] = append(byName[s.Name], s)
	}

	var conflicts []ConflictPair
	for _, specs := range byName {
		for i := 0; i < len(specs); i++ {
			for j := i + 1; j < len(specs); j++ {
				if specs[i].Version != specs[j].Version {
					conflicts = append(conflicts, ConflictPair{A: specs[i], B: specs[j]})
				}
			}
		}
	}
	return conflicts
}
