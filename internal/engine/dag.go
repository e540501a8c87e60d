// Package engine resolves a built node list into an executable dependency
// graph and drives it to completion, sequentially or level-parallel.
package engine

import (
	"context"
	"fmt"

	"github.com/briday1/graph-sp/pkg/api"
)

// dag is the immutable product of a build: nodes, a topological order, and
// the parallelism levels derived from the resolved dependency sets.
type dag struct {
	name   string
	nodes  []*api.Node
	byID   map[api.NodeID]*api.Node
	order  []api.NodeID
	levels [][]api.NodeID
}

// NewDag runs the resolution phase over the builder's flattened node list:
// duplicate-id validation, name-based dependency resolution, topological
// sort (rejecting cycles), and level computation. The node list is owned by
// the dag afterwards and must not be mutated by the caller.
func NewDag(name string, nodes []*api.Node) (api.Dag, error) {
	byID := make(map[api.NodeID]*api.Node, len(nodes))
	for _, n := range nodes {
		if _, exists := byID[n.ID]; exists {
			return nil, fmt.Errorf("%w: %d", api.ErrDuplicateNode, n.ID)
		}
		byID[n.ID] = n
	}

	resolveDependencies(nodes)

	order, err := topologicalOrder(nodes)
	if err != nil {
		return nil, err
	}

	return &dag{
		name:   name,
		nodes:  nodes,
		byID:   byID,
		order:  order,
		levels: computeLevels(byID, order),
	}, nil
}

func (d *dag) Name() string { return d.name }

func (d *dag) Nodes() []*api.Node { return d.nodes }

func (d *dag) ExecutionOrder() []api.NodeID { return d.order }

func (d *dag) ExecutionLevels() [][]api.NodeID { return d.levels }

func (d *dag) Execute(ctx context.Context, opts ...api.ExecuteOption) (api.Context, error) {
	res, err := d.ExecuteDetailed(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return res.Context, nil
}

func (d *dag) Stats() api.Stats {
	stats := api.Stats{
		Nodes: len(d.nodes),
		Depth: len(d.levels),
	}
	for _, level := range d.levels {
		if len(level) > stats.MaxParallelism {
			stats.MaxParallelism = len(level)
		}
	}

	branches := make(map[api.BranchID]struct{})
	variants := make(map[int]struct{})
	for _, n := range d.nodes {
		if n.Branch != 0 {
			branches[n.Branch] = struct{}{}
		}
		if n.Variant != api.NoVariant {
			variants[n.Variant] = struct{}{}
		}
	}
	stats.Branches = len(branches)
	stats.Variants = len(variants)
	return stats
}
