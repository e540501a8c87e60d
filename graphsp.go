package graphsp

import (
	"context"

	"github.com/briday1/graph-sp/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Value    = api.Value
	Kind     = api.Kind
	NodeFunc = api.NodeFunc
	Inputs   = api.Inputs
	Outputs  = api.Outputs
	Node     = api.Node
	NodeID   = api.NodeID
	BranchID = api.BranchID

	Dag            = api.Dag
	Stats          = api.Stats
	Context        = api.Context
	Result         = api.Result
	RunInfo        = api.RunInfo
	ExecuteOption  = api.ExecuteOption
	ExecuteOptions = api.ExecuteOptions

	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	NodeError         = api.NodeError
	NodePanicError    = api.NodePanicError
	MissingInputError = api.MissingInputError
)

// Re-export value constructors.

var (
	None         = api.None
	Int          = api.Int
	Float        = api.Float
	Str          = api.Str
	Bool         = api.Bool
	IntVector    = api.IntVector
	FloatVector  = api.FloatVector
	StringVector = api.StringVector
	BoolVector   = api.BoolVector
)

// Re-export value kinds for convenience.

const (
	NoVariant = api.NoVariant

	KindNone         = api.KindNone
	KindInt          = api.KindInt
	KindFloat        = api.KindFloat
	KindString       = api.KindString
	KindBool         = api.KindBool
	KindIntVector    = api.KindIntVector
	KindFloatVector  = api.KindFloatVector
	KindStringVector = api.KindStringVector
	KindBoolVector   = api.KindBoolVector
)

// Re-export execute options and observer helpers.

var (
	Parallel     = api.Parallel
	WithWorkers  = api.WithWorkers
	WithObserver = api.WithObserver
	Strict       = api.Strict

	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export sentinel errors.

var (
	ErrCycle         = api.ErrCycle
	ErrUnknownBranch = api.ErrUnknownBranch
	ErrDuplicateNode = api.ErrDuplicateNode
)

// Convenience helpers that just forward to the underlying Dag.

// Execute runs an already-built Dag and returns the accumulated execution
// context.
func Execute(ctx context.Context, d Dag, opts ...ExecuteOption) (Context, error) {
	return d.Execute(ctx, opts...)
}

// ExecuteDetailed runs an already-built Dag and returns the detailed result
// with per-node and per-branch output snapshots.
func ExecuteDetailed(ctx context.Context, d Dag, opts ...ExecuteOption) (*Result, error) {
	return d.ExecuteDetailed(ctx, opts...)
}
