package usecase

import (
	"fmt"
	"sort"

	"github.com/shieldworks/protect/internal/domain"
)

// UnitGraph is the dependency graph of the units planned for one network.
// An edge runs from the unit producing a registry key to every unit reading it.
type UnitGraph struct {
	nodes map[string]domain.Unit
	rank  map[string]int
	deps  map[string][]string // unit -> producers it waits for
	edges map[string][]string // producer -> dependents
}

// NewUnitGraph builds the graph. Inputs not produced by any planned unit are
// external to the graph; pre-flight checks them against the registry.
func NewUnitGraph(units []domain.Unit, catalog domain.Catalog, network string) *UnitGraph {
	g := &UnitGraph{
		nodes: make(map[string]domain.Unit, len(units)),
		rank:  make(map[string]int, len(units)),
		deps:  make(map[string][]string),
		edges: make(map[string][]string),
	}

	producers := make(map[string]string)
	for i, u := range units {
		g.nodes[u.Name] = u
		g.rank[u.Name] = i
		if idx := catalog.Index(u.Name); idx >= 0 {
			g.rank[u.Name] = idx
		}
		for _, key := range u.Outputs() {
			producers[key] = u.Name
		}
	}

	for _, u := range units {
		for _, key := range u.Inputs(network) {
			producer, ok := producers[key]
			if !ok || producer == u.Name {
				continue
			}
			g.deps[u.Name] = append(g.deps[u.Name], producer)
			g.edges[producer] = append(g.edges[producer], u.Name)
		}
	}

	return g
}

// Dependencies returns the planned units a unit waits for.
func (g *UnitGraph) Dependencies(name string) []string {
	deps := append([]string(nil), g.deps[name]...)
	sort.Strings(deps)
	return deps
}

// TopologicalSort returns the units in execution order, or an error if there's a cycle.
// Ready units are taken in catalog order so the plan is deterministic.
func (g *UnitGraph) TopologicalSort() ([]domain.Unit, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = len(g.deps[name])
	}

	byRank := func(names []string) {
		sort.Slice(names, func(i, j int) bool {
			if g.rank[names[i]] != g.rank[names[j]] {
				return g.rank[names[i]] < g.rank[names[j]]
			}
			return names[i] < names[j]
		})
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	byRank(queue)

	result := make([]domain.Unit, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[current])

		for _, dependent := range g.edges[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				byRank(queue)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycleNodes []string
		for name, degree := range inDegree {
			if degree > 0 {
				cycleNodes = append(cycleNodes, name)
			}
		}
		sort.Strings(cycleNodes)
		return nil, fmt.Errorf("circular dependency detected involving units: %v", cycleNodes)
	}

	return result, nil
}
