package api

import "time"

// RunInfo identifies one execution of a Dag. It is handed to observers with
// every callback.
type RunInfo struct {
	// RunID is a fresh unique id per Execute call.
	RunID string
	// Graph is the name the graph was built under.
	Graph string
	// Parallel reports which execution mode was selected.
	Parallel bool
	// Workers is the effective worker bound for parallel runs.
	Workers int
}

// Result is the detailed outcome of one run: the final context plus
// per-node and per-branch output snapshots for introspection.
type Result struct {
	Run RunInfo

	// Context is the accumulated shared variable space.
	Context Context

	// NodeOutputs holds each node's published outputs under their
	// shared-context names, before any later overwrite.
	NodeOutputs map[NodeID]Context

	// BranchOutputs holds, per branch id, the union of outputs published by
	// that branch's nodes. This is what keeps two sibling branches that
	// reuse the same output name distinguishable.
	BranchOutputs map[BranchID]Context

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Output returns the value a specific node published under the given
// shared-context name.
func (r *Result) Output(id NodeID, name string) (Value, bool) {
	outs, ok := r.NodeOutputs[id]
	if !ok {
		return None(), false
	}
	v, ok := outs[name]
	return v, ok
}

// BranchOutput returns the value a branch published under the given
// shared-context name.
func (r *Result) BranchOutput(branch BranchID, name string) (Value, bool) {
	outs, ok := r.BranchOutputs[branch]
	if !ok {
		return None(), false
	}
	v, ok := outs[name]
	return v, ok
}
