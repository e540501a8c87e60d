package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/briday1/graph-sp/pkg/api"
)

// run threads the shared execution state through one Execute call. The
// context map is the only shared mutable resource; all writes to it (and to
// the node/branch snapshots) go through mu.
type run struct {
	d    *dag
	opts api.ExecuteOptions
	info api.RunInfo

	mu            sync.Mutex
	vars          api.Context
	nodeOutputs   map[api.NodeID]api.Context
	branchOutputs map[api.BranchID]api.Context
}

func (d *dag) ExecuteDetailed(ctx context.Context, opts ...api.ExecuteOption) (*api.Result, error) {
	o := api.NewExecuteOptions(opts...)

	r := &run{
		d:    d,
		opts: o,
		info: api.RunInfo{
			RunID:    uuid.NewString(),
			Graph:    d.name,
			Parallel: o.Parallel,
			Workers:  o.Workers,
		},
		vars:          make(api.Context),
		nodeOutputs:   make(map[api.NodeID]api.Context, len(d.nodes)),
		branchOutputs: make(map[api.BranchID]api.Context),
	}

	started := time.Now()
	o.Observer.OnRunStart(ctx, r.info)

	var err error
	if o.Parallel {
		err = r.runParallel(ctx)
	} else {
		err = r.runSequential(ctx)
	}

	elapsed := time.Since(started)
	if err != nil {
		o.Observer.OnRunFailed(ctx, r.info, err)
		return nil, err
	}
	o.Observer.OnRunCompleted(ctx, r.info, elapsed)

	return &api.Result{
		Run:           r.info,
		Context:       r.vars,
		NodeOutputs:   r.nodeOutputs,
		BranchOutputs: r.branchOutputs,
		Duration:      elapsed,
	}, nil
}

// runSequential visits the topological order one node at a time.
func (r *run) runSequential(ctx context.Context) error {
	for _, id := range r.d.order {
		if err := r.runNode(ctx, r.d.byID[id]); err != nil {
			return err
		}
	}
	return nil
}

// runParallel processes one level at a time. Within a level, nodes are
// dispatched onto a worker pool bounded by the configured worker count; the
// level completes before the next begins, because any node in level k+1 may
// read outputs written anywhere in level k. A failure halts all remaining
// levels once the current one drains.
func (r *run) runParallel(ctx context.Context) error {
	for _, level := range r.d.levels {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Workers)

		for _, id := range level {
			node := r.d.byID[id]
			g.Go(func() error {
				return r.runNode(gctx, node)
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// runNode filters the context down to the node's declared inputs, invokes
// the function, and publishes its outputs remapped through the output
// mapping. A later writer of the same context name overwrites an earlier
// one; when siblings in one level share an output name, which write lands
// last is deliberately unspecified.
func (r *run) runNode(ctx context.Context, node *api.Node) error {
	inputs, err := r.gatherInputs(node)
	if err != nil {
		return err
	}

	r.opts.Observer.OnNodeStart(ctx, r.info, node)
	started := time.Now()

	outputs, err := invoke(ctx, node, inputs)
	r.opts.Observer.OnNodeCompleted(ctx, r.info, node, err, time.Since(started))
	if err != nil {
		return err
	}

	published := make(api.Context, len(node.Outputs))
	for retName, ctxName := range node.Outputs {
		if v, ok := outputs[retName]; ok {
			published[ctxName] = v
		}
	}
	r.publish(node, published)
	return nil
}

// invoke calls the node function with panic isolation: a panicking user
// function becomes a NodePanicError instead of tearing down the executor.
func invoke(ctx context.Context, node *api.Node, inputs map[string]api.Value) (out map[string]api.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &api.NodePanicError{ID: node.ID, Label: node.Label, Value: rec}
		}
	}()

	out, err = node.Fn(ctx, inputs)
	if err != nil {
		return nil, &api.NodeError{ID: node.ID, Label: node.Label, Err: err}
	}
	return out, nil
}

// gatherInputs builds the function-local input map. Plain keys read the
// shared context; "branchID:name" keys read the named branch's output
// snapshot. Absent names are omitted, unless the run is strict.
func (r *run) gatherInputs(node *api.Node) (map[string]api.Value, error) {
	inputs := make(map[string]api.Value, len(node.Inputs))

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, param := range node.Inputs {
		var (
			v  api.Value
			ok bool
		)
		if branch, name, qualified := api.SplitBranchQualifiedName(key); qualified {
			v, ok = r.branchOutputs[branch][name]
		} else {
			v, ok = r.vars[key]
		}
		if !ok {
			if r.opts.Strict {
				return nil, &api.MissingInputError{ID: node.ID, Label: node.Label, Name: key}
			}
			continue
		}
		inputs[param] = v
	}
	return inputs, nil
}

// publish merges a node's outputs into the shared context and the
// introspection snapshots.
func (r *run) publish(node *api.Node, outputs api.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nodeOutputs[node.ID] = outputs
	for name, v := range outputs {
		r.vars[name] = v
	}

	if node.Branch != 0 {
		snapshot := r.branchOutputs[node.Branch]
		if snapshot == nil {
			snapshot = make(api.Context, len(outputs))
			r.branchOutputs[node.Branch] = snapshot
		}
		for name, v := range outputs {
			snapshot[name] = v
		}
	}
}
