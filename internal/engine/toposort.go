package engine

import (
	"fmt"
	"sort"

	"github.com/briday1/graph-sp/pkg/api"
)

// topologicalOrder orders node ids so that every dependency of a node
// appears strictly before it, using Kahn's algorithm. Ties are broken by
// node id so the order is deterministic. A cycle yields an error wrapping
// api.ErrCycle that names the nodes still blocked.
func topologicalOrder(nodes []*api.Node) ([]api.NodeID, error) {
	indegree := make(map[api.NodeID]int, len(nodes))
	dependents := make(map[api.NodeID][]api.NodeID, len(nodes))

	for _, n := range nodes {
		indegree[n.ID] += 0
		for _, dep := range n.Deps {
			indegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	queue := make([]api.NodeID, 0, len(nodes))
	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	sort.Ints(queue)

	order := make([]api.NodeID, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		next := append([]api.NodeID(nil), dependents[id]...)
		sort.Ints(next)
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		blocked := make([]api.NodeID, 0)
		for _, n := range nodes {
			if indegree[n.ID] > 0 {
				blocked = append(blocked, n.ID)
			}
		}
		sort.Ints(blocked)
		return nil, fmt.Errorf("%w: nodes %v form a dependency cycle", api.ErrCycle, blocked)
	}

	return order, nil
}

// computeLevels partitions a topological order into parallelism levels:
// level 0 for nodes with no dependencies, otherwise one past the deepest
// dependency. Every node's dependencies therefore lie in strictly lower
// levels, which makes a level safe to run concurrently.
func computeLevels(byID map[api.NodeID]*api.Node, order []api.NodeID) [][]api.NodeID {
	levels := make([][]api.NodeID, 0)
	levelOf := make(map[api.NodeID]int, len(order))

	for _, id := range order {
		n := byID[id]
		level := 0
		for _, dep := range n.Deps {
			if l, ok := levelOf[dep]; ok && l+1 > level {
				level = l + 1
			}
		}
		levelOf[id] = level

		for len(levels) <= level {
			levels = append(levels, nil)
		}
		levels[level] = append(levels[level], id)
	}

	return levels
}
