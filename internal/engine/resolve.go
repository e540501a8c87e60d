package engine

import (
	"sort"

	"github.com/briday1/graph-sp/pkg/api"
)

// resolveDependencies derives every node's true dependency set from the
// declared input/output names. The structural links recorded while building
// (merge targets, branch attachment) are kept; on top of them, a node gains
// a dependency on every producer of every context name it reads. A name
// nobody produces contributes no dependency: the node simply sees that
// input absent at execution time.
//
// Merge inputs use "branchID:name" keys, which match only producers tagged
// with that branch id; that is the one place the same context name needs
// disambiguating across sibling branches.
func resolveDependencies(nodes []*api.Node) {
	producers := make(map[string][]api.NodeID)
	branchProducers := make(map[api.BranchID]map[string][]api.NodeID)

	for _, n := range nodes {
		for _, ctxName := range n.Outputs {
			producers[ctxName] = append(producers[ctxName], n.ID)
			if n.Branch != 0 {
				byName := branchProducers[n.Branch]
				if byName == nil {
					byName = make(map[string][]api.NodeID)
					branchProducers[n.Branch] = byName
				}
				byName[ctxName] = append(byName[ctxName], n.ID)
			}
		}
	}

	for _, n := range nodes {
		deps := make(map[api.NodeID]struct{}, len(n.Deps))
		for _, d := range n.Deps {
			deps[d] = struct{}{}
		}

		for key := range n.Inputs {
			var ids []api.NodeID
			if branch, name, ok := api.SplitBranchQualifiedName(key); ok {
				ids = branchProducers[branch][name]
			} else {
				ids = producers[key]
			}
			for _, id := range ids {
				if id != n.ID {
					deps[id] = struct{}{}
				}
			}
		}

		n.Deps = n.Deps[:0]
		for id := range deps {
			n.Deps = append(n.Deps, id)
		}
		sort.Ints(n.Deps)
	}
}
