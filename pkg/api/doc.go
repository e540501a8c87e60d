// Package api contains the core building blocks used by the graphsp
// dataflow engine: the Value container, node metadata, the Dag and Observer
// interfaces, and the error taxonomy.
//
// Most users interact with the higher-level graphsp package, which
// re-exports selected types and helpers from this package. The api package
// is intended for advanced use cases, custom integrations, or contributors
// extending the engine itself.
//
// # Values
//
// Value is a closed tagged union over scalar kinds (int, float, string,
// bool, plus an absence marker) and their vector counterparts. Scalars are
// held by value; vectors are held behind shared immutable storage so that
// copying a Value never copies elements. Values are immutable: the engine
// only ever replaces a context entry wholesale.
//
// # Nodes
//
// Node is the atomic unit of computation: an opaque NodeFunc plus the
// metadata the resolver and scheduler need: input and output name
// mappings, the dependency set, and optional branch/variant tagging. Nodes
// are created by builder operations and are immutable once a Dag has been
// built.
//
// # Execution
//
// Dag is the immutable product of a build. Execute accepts functional
// options (Parallel, WithWorkers, WithObserver, Strict) and returns the
// accumulated Context; ExecuteDetailed adds per-node and per-branch output
// snapshots. The Observer interface receives run and node lifecycle
// callbacks; NoopObserver, CompositeObserver, LoggingObserver and
// BasicMetrics are provided.
package api
