package api

import (
	"context"
	"fmt"
	"runtime"
)

// Dag is the immutable, resolved product of building a graph: the full node
// list, a topological execution order, and a partition of that order into
// parallelism levels. Implementations live in internal/engine; external
// callers obtain one from the builder's Build.
type Dag interface {
	// Name returns the name the graph was built under.
	Name() string

	// Execute drives every node to completion and returns the accumulated
	// execution context. By default nodes run sequentially in topological
	// order; see Parallel and WithWorkers.
	Execute(ctx context.Context, opts ...ExecuteOption) (Context, error)

	// ExecuteDetailed is Execute plus introspection: the result carries
	// per-node and per-branch output snapshots alongside the final context.
	ExecuteDetailed(ctx context.Context, opts ...ExecuteOption) (*Result, error)

	// Nodes returns the resolved node list. Callers must treat it as
	// read-only.
	Nodes() []*Node

	// ExecutionOrder returns a topological order of node ids.
	ExecutionOrder() []NodeID

	// ExecutionLevels partitions the order so that no node depends on
	// another node in its own level, and every dependency lies in a
	// strictly lower level.
	ExecutionLevels() [][]NodeID

	// Stats summarises the shape of the graph.
	Stats() Stats
}

// Stats describes the shape of a built Dag.
type Stats struct {
	// Nodes is the total node count.
	Nodes int
	// Depth is the number of execution levels.
	Depth int
	// MaxParallelism is the size of the widest level.
	MaxParallelism int
	// Branches is the number of distinct branch ids present.
	Branches int
	// Variants is the number of distinct variant indices present.
	Variants int
}

// Summary renders the stats as a short human-readable block.
func (s Stats) Summary() string {
	return fmt.Sprintf(
		"dag: %d nodes, depth %d, max parallelism %d, %d branches, %d variants",
		s.Nodes, s.Depth, s.MaxParallelism, s.Branches, s.Variants,
	)
}

// ExecuteOptions collects the knobs accepted by Execute.
type ExecuteOptions struct {
	// Parallel selects level-synchronized concurrent execution instead of
	// the sequential walk of the topological order.
	Parallel bool

	// Workers bounds the worker pool used within one level. Zero or
	// negative means GOMAXPROCS.
	Workers int

	// Observer receives run and node lifecycle callbacks. Nil means
	// NoopObserver.
	Observer Observer

	// Strict makes a missing declared input an error instead of a silently
	// smaller input set.
	Strict bool
}

// ExecuteOption configures one Execute call.
type ExecuteOption func(*ExecuteOptions)

// Parallel enables level-synchronized concurrent execution. Nodes within a
// level run on a bounded worker pool with a barrier between levels.
func Parallel() ExecuteOption {
	return func(o *ExecuteOptions) { o.Parallel = true }
}

// WithWorkers bounds the number of concurrently executing nodes within a
// level. It implies nothing on its own; combine it with Parallel.
func WithWorkers(n int) ExecuteOption {
	return func(o *ExecuteOptions) { o.Workers = n }
}

// WithObserver attaches an Observer to the run.
func WithObserver(obs Observer) ExecuteOption {
	return func(o *ExecuteOptions) {
		if obs != nil {
			o.Observer = obs
		}
	}
}

// Strict makes missing declared inputs fail the run with a
// MissingInputError rather than being silently omitted.
func Strict() ExecuteOption {
	return func(o *ExecuteOptions) { o.Strict = true }
}

// NewExecuteOptions applies opts over the defaults.
func NewExecuteOptions(opts ...ExecuteOption) ExecuteOptions {
	o := ExecuteOptions{
		Workers:  runtime.GOMAXPROCS(0),
		Observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Observer == nil {
		o.Observer = NoopObserver{}
	}
	return o
}
