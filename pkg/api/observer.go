package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the executor for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay node execution. When a run is parallel,
// node callbacks may arrive concurrently.
type Observer interface {
	// OnRunStart is called once per Execute call, before any node runs.
	OnRunStart(ctx context.Context, run RunInfo)

	// OnRunCompleted is called when every node has finished successfully.
	OnRunCompleted(ctx context.Context, run RunInfo, d time.Duration)

	// OnRunFailed is called when the run halts on a node failure or a
	// strict-mode missing input.
	OnRunFailed(ctx context.Context, run RunInfo, err error)

	// OnNodeStart is called before invoking a node function.
	OnNodeStart(ctx context.Context, run RunInfo, node *Node)

	// OnNodeCompleted is called after a node function returns, for both
	// successes and failures (err != nil).
	OnNodeCompleted(ctx context.Context, run RunInfo, node *Node, err error, d time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, run RunInfo)                      {}
func (NoopObserver) OnRunCompleted(ctx context.Context, run RunInfo, d time.Duration) {}
func (NoopObserver) OnRunFailed(ctx context.Context, run RunInfo, err error)          {}
func (NoopObserver) OnNodeStart(ctx context.Context, run RunInfo, node *Node)         {}
func (NoopObserver) OnNodeCompleted(ctx context.Context, run RunInfo, node *Node, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, run RunInfo) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, run)
	}
}

func (c *CompositeObserver) OnRunCompleted(ctx context.Context, run RunInfo, d time.Duration) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, run, d)
	}
}

func (c *CompositeObserver) OnRunFailed(ctx context.Context, run RunInfo, err error) {
	for _, o := range c.observers {
		o.OnRunFailed(ctx, run, err)
	}
}

func (c *CompositeObserver) OnNodeStart(ctx context.Context, run RunInfo, node *Node) {
	for _, o := range c.observers {
		o.OnNodeStart(ctx, run, node)
	}
}

func (c *CompositeObserver) OnNodeCompleted(ctx context.Context, run RunInfo, node *Node, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnNodeCompleted(ctx, run, node, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs run / node lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, run RunInfo) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("graph", run.Graph),
		slog.String("run_id", run.RunID),
		slog.Bool("parallel", run.Parallel),
	)
}

func (o *LoggingObserver) OnRunCompleted(ctx context.Context, run RunInfo, d time.Duration) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("graph", run.Graph),
		slog.String("run_id", run.RunID),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnRunFailed(ctx context.Context, run RunInfo, err error) {
	o.Logger.ErrorContext(ctx, "run_failed",
		slog.String("graph", run.Graph),
		slog.String("run_id", run.RunID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnNodeStart(ctx context.Context, run RunInfo, node *Node) {
	o.Logger.DebugContext(ctx, "node_start",
		slog.String("graph", run.Graph),
		slog.String("run_id", run.RunID),
		slog.Int("node_id", node.ID),
		slog.String("node", node.DisplayName()),
	)
}

func (o *LoggingObserver) OnNodeCompleted(ctx context.Context, run RunInfo, node *Node, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "node_completed",
		slog.String("graph", run.Graph),
		slog.String("run_id", run.RunID),
		slog.Int("node_id", node.ID),
		slog.String("node", node.DisplayName()),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate node durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted       atomic.Int64
	runsCompleted     atomic.Int64
	runsFailed        atomic.Int64
	nodesCompleted    atomic.Int64
	totalNodeDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64

	NodesCompleted  int64
	AvgNodeDuration time.Duration
}

func (m *BasicMetrics) OnRunStart(ctx context.Context, run RunInfo) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnRunCompleted(ctx context.Context, run RunInfo, d time.Duration) {
	m.runsCompleted.Add(1)
}

func (m *BasicMetrics) OnRunFailed(ctx context.Context, run RunInfo, err error) {
	m.runsFailed.Add(1)
}

func (m *BasicMetrics) OnNodeCompleted(ctx context.Context, run RunInfo, node *Node, err error, d time.Duration) {
	// Only count successful nodes for average duration.
	if err == nil {
		m.nodesCompleted.Add(1)
		m.totalNodeDuration.Add(d.Nanoseconds())
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	nodes := m.nodesCompleted.Load()
	totalNs := m.totalNodeDuration.Load()

	var avg time.Duration
	if nodes > 0 {
		avg = time.Duration(totalNs / nodes)
	}

	return BasicMetricsSnapshot{
		RunsStarted:     m.runsStarted.Load(),
		RunsCompleted:   m.runsCompleted.Load(),
		RunsFailed:      m.runsFailed.Load(),
		NodesCompleted:  nodes,
		AvgNodeDuration: avg,
	}
}
