// Package graphsp provides a lightweight, embeddable dataflow-graph engine
// for Go.
//
// Callers assemble a pipeline of computation nodes that exchange named
// values through a shared variable space; the engine derives the dependency
// graph from those names, schedules the nodes, and drives them to
// completion sequentially or in parallel. It runs fully in-process with no
// external infrastructure.
//
// # Core Concepts
//
// The graphsp programming model is intentionally small:
//
//  1. Graph (the builder)
//  2. NodeFunc
//  3. Dag
//  4. Value and Context
//  5. Observer
//
// # Graph
//
// Graph is the fluent builder. Nodes attach implicitly: Add appends a node
// after the current frontier, Branch fans out into parallel subgraphs,
// Merge fans them back in, and Variants replicates a node across a
// parameter sweep. The builder records declared input/output names, not
// structural edges; the true dependency graph is derived at Build time by
// matching every input name against the nodes that produce it.
//
// Example:
//
//	g := graphsp.New("pipeline").
//	    Add(load, "Load", nil, graphsp.Outputs{"samples": "data"}).
//	    Add(filter, "Filter", graphsp.Inputs{"data": "in"}, graphsp.Outputs{"out": "clean"})
//
//	dag, err := g.Build()
//
// # NodeFunc
//
// A NodeFunc is the opaque unit of computation:
//
//	type NodeFunc func(ctx context.Context, inputs map[string]Value) (map[string]Value, error)
//
// It receives the context entries named by the node's input mapping, keyed
// by function-local parameter names, and returns outputs keyed by
// function-local return names, which the engine publishes back under the
// mapped shared-context names. Functions must be safe for concurrent use if
// the graph is executed in parallel.
//
// # Dag
//
// Build produces an immutable Dag: the resolved node list, a topological
// execution order, and a partition of the order into parallelism levels.
// Execute drives the Dag sequentially; with the Parallel option, each level
// runs concurrently on a bounded worker pool with a barrier between levels.
// ExecuteDetailed additionally returns per-node and per-branch output
// snapshots. Stats and ExportMermaid cover introspection and visualization.
//
// # Value and Context
//
// Values form a closed tagged union over scalar and vector kinds. Vector
// payloads sit behind shared immutable storage, so distributing one large
// artifact to many consumers costs a pointer copy, not a deep copy. The
// execution Context maps shared names to Values and is the sole channel
// nodes communicate through; entries are replaced wholesale, never mutated
// in place.
//
// # Observer
//
// The Observer interface reports run and node lifecycle events. Ready-made
// implementations cover structured logging (log/slog) and basic in-memory
// metrics, and observers can be combined with NewCompositeObserver.
//
// For examples, see the /examples directory.
package graphsp
