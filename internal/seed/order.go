package seed

import (
	"sort"

	"github.com/verdict-engine/verdict/internal/ir"
)

// generationOrder computes a deterministic topological order of entities
// over foreign-key edges, parents before children.
//
// Cycle detection runs first via Tarjan's strongly-connected-components
// algorithm; any SCC with more than one member (or a self-loop) is a
// generation-order cycle and aborts derivation. Ties in the topological
// order are broken by entity name so the order is reproducible.
func generationOrder(domain ir.DomainModel) ([]string, error) {
	// deps[child] = set of parents the child depends on
	deps := make(map[string]map[string]bool, len(domain.Entities))
	for _, e := range domain.Entities {
		deps[e.Name] = make(map[string]bool)
	}
	for _, rel := range domain.Relationships {
		if _, ok := deps[rel.Child]; ok {
			deps[rel.Child][rel.Parent] = true
		}
	}

	if cycle := findCycle(deps); cycle != nil {
		return nil, &CyclicDependencyError{Path: cycle}
	}

	// Kahn's algorithm with name-sorted ready set.
	indegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string, len(deps))
	for child, parents := range deps {
		indegree[child] = len(parents)
		for parent := range parents {
			dependents[parent] = append(dependents[parent], child)
		}
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(deps))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		var released []string
		for _, child := range next {
			indegree[child]--
			if indegree[child] == 0 {
				released = append(released, child)
			}
		}
		ready = append(ready, released...)
		sort.Strings(ready)
	}

	return order, nil
}

// findCycle runs Tarjan's SCC algorithm over the dependency graph and
// returns one cycle path (closed: first element repeated at the end), or
// nil if the graph is a DAG.
func findCycle(deps map[string]map[string]bool) []string {
	type nodeState struct {
		index   int
		lowlink int
		onStack bool
	}

	index := 0
	states := make(map[string]*nodeState, len(deps))
	var stack []string
	var cycle []string

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var strongconnect func(v string)
	strongconnect = func(v string) {
		st := &nodeState{index: index, lowlink: index}
		states[v] = st
		index++
		stack = append(stack, v)
		st.onStack = true

		parents := make([]string, 0, len(deps[v]))
		for p := range deps[v] {
			parents = append(parents, p)
		}
		sort.Strings(parents)

		for _, w := range parents {
			if _, known := deps[w]; !known {
				continue
			}
			ws, visited := states[w]
			switch {
			case !visited:
				strongconnect(w)
				if states[w].lowlink < st.lowlink {
					st.lowlink = states[w].lowlink
				}
			case ws.onStack:
				if ws.index < st.lowlink {
					st.lowlink = ws.index
				}
			}
		}

		if st.lowlink == st.index {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				states[w].onStack = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if cycle == nil && (len(scc) > 1 || (len(scc) == 1 && deps[scc[0]][scc[0]])) {
				sort.Strings(scc)
				cycle = append(scc, scc[0])
			}
		}
	}

	for _, name := range names {
		if _, visited := states[name]; !visited {
			strongconnect(name)
		}
		if cycle != nil {
			break
		}
	}
	return cycle
}
