package graphsp

import (
	"fmt"

	"github.com/briday1/graph-sp/internal/engine"
	"github.com/briday1/graph-sp/pkg/api"
)

// Graph provides a fluent API for assembling a dataflow pipeline:
//
//	g := graphsp.New("pipeline").
//	    Add(source, "Source", nil, graphsp.Outputs{"out": "data"}).
//	    Add(double, "Double", graphsp.Inputs{"data": "x"}, graphsp.Outputs{"y": "result"})
//
//	dag, err := g.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, err := dag.Execute(context.Background())
//
// Nodes connect implicitly: the builder tracks a frontier of attachment
// points, but the dependency graph handed to the scheduler is derived at
// Build time from the declared input/output context names, not from the
// order nodes happened to be added in.
type Graph struct {
	name   string
	nodes  []*api.Node
	nextID api.NodeID

	// frontier holds the node ids the next operation attaches to. It is
	// empty only before the first node is added.
	frontier []api.NodeID

	// lastBranchPoint remembers the frontier as of the last branching
	// event, so consecutive Branch calls fan out from the same origin
	// instead of chaining.
	lastBranchPoint []api.NodeID

	// mergeTargets stages node ids the next created node must depend on.
	// It is consumed exactly once and takes precedence over frontier
	// attachment; Merge stages the absorbed branch terminals here for its
	// own merge node.
	mergeTargets []api.NodeID

	branches     []pendingBranch
	nextBranchID api.BranchID

	// err records the first structural mistake (e.g. a merge naming an
	// unknown branch); Build surfaces it instead of returning an
	// incomplete graph.
	err error
}

// pendingBranch is an un-flattened child builder awaiting absorption at
// Merge or Build time.
type pendingBranch struct {
	id  api.BranchID
	sub *Graph
}

// MergeInput selects one branch's output for a merge node: the value the
// branch published under Name is handed to the merge function as Param.
type MergeInput struct {
	Branch api.BranchID
	Name   string
	Param  string
}

// New creates an empty graph builder. The name is used for logging and
// diagram export.
func New(name string) *Graph {
	return &Graph{
		name:         name,
		nextBranchID: 1,
	}
}

// Name returns the graph name.
func (g *Graph) Name() string {
	return g.name
}

// Add appends one computation node per current frontier member (a single
// node when the graph is empty), so adding after a variant sweep creates
// one continuation per variant. inputs maps shared-context names to the
// parameter names fn reads; outputs maps fn's return names to the
// shared-context names the results are published under. Either mapping may
// be nil.
//
// Staged merge targets, if any, become the new node's dependencies and are
// consumed; otherwise the true dependencies are inferred at Build from the
// declared names.
func (g *Graph) Add(fn NodeFunc, label string, inputs Inputs, outputs Outputs) *Graph {
	if fn == nil {
		panic(fmt.Sprintf("graphsp: node %q has nil function", label))
	}

	replicas := len(g.frontier)
	if replicas == 0 {
		replicas = 1
	}

	created := make([]api.NodeID, 0, replicas)
	for i := 0; i < replicas; i++ {
		node := g.newNode(fn, label, inputs, outputs)
		g.consumeMergeTargets(node)
		g.nodes = append(g.nodes, node)
		created = append(created, node.ID)
	}

	g.frontier = created
	g.lastBranchPoint = nil
	return g
}

// Variants replicates a sweep across the frontier: one node per
// (function, frontier-member) pair, each tagged with its variant index.
// Applying Variants to the output of a previous Variants call therefore
// produces the cartesian product of the two sweeps. The pre-call frontier
// is remembered as the branch point, so a following Branch fans out from
// the same origin the variants did.
func (g *Graph) Variants(fns []NodeFunc, label string, inputs Inputs, outputs Outputs) *Graph {
	parents := g.frontier
	hasParents := len(parents) > 0

	var previousFrontier []api.NodeID
	if hasParents {
		previousFrontier = append([]api.NodeID(nil), parents...)
	}

	created := make([]api.NodeID, 0, len(fns)*max(1, len(parents)))
	for idx, fn := range fns {
		if fn == nil {
			panic(fmt.Sprintf("graphsp: variant %d of %q has nil function", idx, label))
		}

		variantLabel := label
		if label != "" {
			variantLabel = fmt.Sprintf("%s (v%d)", label, idx)
		}

		replicas := len(parents)
		if replicas == 0 {
			replicas = 1
		}
		for i := 0; i < replicas; i++ {
			node := g.newNode(fn, variantLabel, inputs, outputs)
			node.Variant = idx
			if !g.consumeMergeTargets(node) && hasParents {
				node.Deps = append(node.Deps, parents[i])
				node.IsBranch = true
			}
			g.nodes = append(g.nodes, node)
			created = append(created, node.ID)
		}
	}

	g.frontier = created
	g.lastBranchPoint = previousFrontier
	return g
}

// Branch inserts a fan-out subgraph and returns its branch id for use in
// Merge. Consecutive Branch calls without an intervening Add fan out from
// the same branch point. For each branch point, the subgraph's nodes are
// duplicated with freshly allocated ids, internal dependencies remapped,
// and subgraph roots attached to that point: branching from m points with
// an n-node subgraph yields m×n nodes, all tagged with the branch id. The
// un-duplicated subgraph is retained and flattened into the node list at
// Merge or Build.
func (g *Graph) Branch(sub *Graph) api.BranchID {
	if sub == nil {
		panic("graphsp: nil branch subgraph")
	}
	if sub == g {
		panic("graphsp: cannot branch a graph into itself")
	}
	if sub.err != nil && g.err == nil {
		g.err = sub.err
	}

	branchID := g.nextBranchID
	g.nextBranchID++

	branchPoints := g.lastBranchPoint
	if branchPoints == nil {
		if len(g.frontier) == 0 {
			// Nothing to attach to yet; the subgraph starts independently
			// and is absorbed at Merge or Build.
			g.branches = append(g.branches, pendingBranch{id: branchID, sub: sub})
			return branchID
		}
		branchPoints = append([]api.NodeID(nil), g.frontier...)
		g.lastBranchPoint = branchPoints
	}

	for _, bp := range branchPoints {
		idMap := make(map[api.NodeID]api.NodeID, len(sub.nodes))
		for _, n := range sub.nodes {
			idMap[n.ID] = g.nextID
			g.nextID++
		}

		for _, n := range sub.nodes {
			dup := n.Clone()
			dup.ID = idMap[n.ID]

			// Keep only dependencies internal to the subgraph, remapped
			// into the parent's id space.
			internal := dup.Deps[:0]
			for _, dep := range n.Deps {
				if mapped, ok := idMap[dep]; ok {
					internal = append(internal, mapped)
				}
			}
			dup.Deps = internal

			// Subgraph roots attach to the branch point.
			if len(n.Deps) == 0 {
				dup.Deps = append(dup.Deps, bp)
			}

			dup.IsBranch = true
			dup.Branch = branchID
			g.nodes = append(g.nodes, dup)
		}
	}

	g.branches = append(g.branches, pendingBranch{id: branchID, sub: sub})
	return branchID
}

// Merge fans pending branches back in: every un-flattened branch builder is
// absorbed into the node list, and a single merge node is created that
// depends on all branch terminals. Each MergeInput reads one branch's
// published value, so two sibling branches may reuse the same output name
// without colliding. The frontier becomes the merge node alone.
func (g *Graph) Merge(fn NodeFunc, label string, inputs []MergeInput, outputs Outputs) *Graph {
	if fn == nil {
		panic(fmt.Sprintf("graphsp: merge node %q has nil function", label))
	}

	mergeInputs := make(Inputs, len(inputs))
	for _, in := range inputs {
		if in.Branch <= 0 || in.Branch >= g.nextBranchID {
			if g.err == nil {
				g.err = fmt.Errorf("%w: merge %q references branch %d", api.ErrUnknownBranch, label, in.Branch)
			}
			continue
		}
		mergeInputs[api.BranchQualifiedName(in.Branch, in.Name)] = in.Param
	}

	pending := g.branches
	g.branches = nil
	for _, pb := range pending {
		g.mergeTargets = append(g.mergeTargets, g.absorb(pb.sub)...)
	}

	// The staged terminals are consumed by the merge node itself.
	node := g.newNode(fn, label, mergeInputs, outputs)
	g.consumeMergeTargets(node)
	g.nodes = append(g.nodes, node)

	g.frontier = []api.NodeID{node.ID}
	g.lastBranchPoint = nil
	return g
}

// Build flattens any remaining pending branches, resolves every node's true
// dependency set from the declared context names, and returns the immutable
// Dag, or the first structural, duplicate-id, or cycle error encountered.
// The builder must not be used after a successful Build.
func (g *Graph) Build() (Dag, error) {
	if g.err != nil {
		return nil, g.err
	}

	pending := g.branches
	g.branches = nil
	for _, pb := range pending {
		g.absorb(pb.sub)
	}

	return engine.NewDag(g.name, g.nodes)
}

// MustBuild is like Build but panics on error. Useful for initialization
// in main().
func (g *Graph) MustBuild() Dag {
	d, err := g.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// newNode allocates the next node id and copies the caller's mappings so
// later mutation of the argument maps cannot leak into the graph.
func (g *Graph) newNode(fn NodeFunc, label string, inputs Inputs, outputs Outputs) *api.Node {
	node := &api.Node{
		ID:      g.nextID,
		Label:   label,
		Fn:      fn,
		Inputs:  make(Inputs, len(inputs)),
		Outputs: make(Outputs, len(outputs)),
		Variant: api.NoVariant,
	}
	g.nextID++
	for k, v := range inputs {
		node.Inputs[k] = v
	}
	for k, v := range outputs {
		node.Outputs[k] = v
	}
	return node
}

// consumeMergeTargets attaches staged merge targets to node and clears
// them. Staged targets are consumed by exactly one node.
func (g *Graph) consumeMergeTargets(node *api.Node) bool {
	if len(g.mergeTargets) == 0 {
		return false
	}
	node.Deps = append(node.Deps, g.mergeTargets...)
	g.mergeTargets = nil
	return true
}

// absorb flattens a branch builder's nodes into this builder, renumbering
// them into the parent id space, and returns the branch's terminal ids:
// nodes that no other node within the branch depends on, collected
// recursively through nested branches.
func (g *Graph) absorb(sub *Graph) []api.NodeID {
	dependedOn := make(map[api.NodeID]struct{})
	for _, n := range sub.nodes {
		for _, dep := range n.Deps {
			dependedOn[dep] = struct{}{}
		}
	}

	idMap := make(map[api.NodeID]api.NodeID, len(sub.nodes))
	var terminals []api.NodeID

	for _, n := range sub.nodes {
		newID := g.nextID
		g.nextID++
		idMap[n.ID] = newID

		if _, ok := dependedOn[n.ID]; !ok {
			terminals = append(terminals, newID)
		}

		moved := n.Clone()
		moved.ID = newID
		for i, dep := range moved.Deps {
			if mapped, ok := idMap[dep]; ok {
				moved.Deps[i] = mapped
			}
		}
		g.nodes = append(g.nodes, moved)
	}

	for _, pb := range sub.branches {
		terminals = append(terminals, g.absorb(pb.sub)...)
	}
	sub.branches = nil

	return terminals
}
