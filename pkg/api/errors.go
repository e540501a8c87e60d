package api

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle indicates the resolved dependency graph contains a cycle.
	ErrCycle = errors.New("graphsp: cycle detected")

	// ErrUnknownBranch indicates a merge referenced a branch id that was
	// never created on the builder.
	ErrUnknownBranch = errors.New("graphsp: unknown branch id")

	// ErrDuplicateNode indicates two nodes were assigned the same id. It is
	// a programmer error surfaced at Build rather than silently producing an
	// incomplete graph.
	ErrDuplicateNode = errors.New("graphsp: duplicate node id")
)

// NodeError wraps a failure returned by a node function. Downstream nodes
// cannot safely proceed without the failed node's outputs, so the executor
// halts remaining levels when one occurs.
type NodeError struct {
	ID    NodeID
	Label string
	Err   error
}

func (e *NodeError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("graphsp: node %d (%s) failed: %v", e.ID, e.Label, e.Err)
	}
	return fmt.Sprintf("graphsp: node %d failed: %v", e.ID, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// NodePanicError wraps a panic recovered from a node function.
type NodePanicError struct {
	ID    NodeID
	Label string
	Value any
}

func (e *NodePanicError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("graphsp: panic in node %d (%s): %v", e.ID, e.Label, e.Value)
	}
	return fmt.Sprintf("graphsp: panic in node %d: %v", e.ID, e.Value)
}

// MissingInputError is returned under strict execution when a node requests
// a context name nobody produced. The default (permissive) contract instead
// hands the node a smaller input set and lets it supply its own default.
type MissingInputError struct {
	ID    NodeID
	Label string
	Name  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("graphsp: node %d (%s) requires input %q which is absent from the context",
		e.ID, e.Label, e.Name)
}
