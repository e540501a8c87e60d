package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// NodeID identifies a node within one built graph. IDs are dense integers
// allocated in creation order; nodes absorbed from a branch subgraph are
// renumbered into the parent's ID space.
type NodeID = int

// BranchID identifies one fan-out subgraph. Zero means "not part of a
// branch"; real ids are allocated from 1.
type BranchID = int

// NoVariant is the Variant value of nodes that are not part of a sweep.
const NoVariant = -1

// NodeFunc is the opaque computation a node performs. It receives the
// context entries named by the node's input mapping, keyed by the
// function-local parameter names, and returns outputs keyed by
// function-local return names.
//
// When a graph is executed in parallel, the same NodeFunc may be invoked
// from multiple goroutines (a variant or branch replica per goroutine), so
// implementations must be safe for concurrent use.
type NodeFunc func(ctx context.Context, inputs map[string]Value) (map[string]Value, error)

// Inputs maps shared-context names to the parameter names the node function
// actually reads. A merge node's keys carry a "branchID:" prefix, which
// disambiguates the same context name across sibling branches.
type Inputs map[string]string

// Outputs maps the node function's return names to the shared-context names
// the results are published under.
type Outputs map[string]string

// Node is the atomic unit of computation: an opaque function plus the
// metadata the resolver and scheduler need. Nodes are created by builder
// operations and are immutable after Build, except that Deps is augmented
// during branch attachment and dependency resolution.
type Node struct {
	ID      NodeID
	Label   string
	Fn      NodeFunc
	Inputs  Inputs
	Outputs Outputs
	Deps    []NodeID

	IsBranch bool
	Branch   BranchID
	Variant  int
}

// DisplayName returns the label, or a synthetic name when none was given.
func (n *Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	return fmt.Sprintf("node %d", n.ID)
}

// Clone returns a copy of the node with its own Deps and mapping storage.
// The function is shared, not copied; NodeFuncs are invoked, never mutated.
func (n *Node) Clone() *Node {
	c := *n
	c.Deps = append([]NodeID(nil), n.Deps...)
	c.Inputs = make(Inputs, len(n.Inputs))
	for k, v := range n.Inputs {
		c.Inputs[k] = v
	}
	c.Outputs = make(Outputs, len(n.Outputs))
	for k, v := range n.Outputs {
		c.Outputs[k] = v
	}
	return &c
}

// DependsOn reports whether id is in the node's dependency set.
func (n *Node) DependsOn(id NodeID) bool {
	for _, d := range n.Deps {
		if d == id {
			return true
		}
	}
	return false
}

// BranchQualifiedName builds the synthetic input key a merge node uses to
// read a context name from one specific branch.
func BranchQualifiedName(branch BranchID, name string) string {
	return strconv.Itoa(branch) + ":" + name
}

// SplitBranchQualifiedName parses a "branchID:name" input key. ok is false
// for plain context names.
func SplitBranchQualifiedName(key string) (branch BranchID, name string, ok bool) {
	i := strings.IndexByte(key, ':')
	if i <= 0 {
		return 0, "", false
	}
	b, err := strconv.Atoi(key[:i])
	if err != nil || b <= 0 {
		return 0, "", false
	}
	return b, key[i+1:], true
}
