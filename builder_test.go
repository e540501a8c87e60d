package graphsp

import (
	"context"
	"errors"
	"testing"

	"github.com/briday1/graph-sp/pkg/api"
)

// emit returns a node function that publishes fixed values.
func emit(vals map[string]Value) NodeFunc {
	return func(ctx context.Context, inputs map[string]Value) (map[string]Value, error) {
		out := make(map[string]Value, len(vals))
		for k, v := range vals {
			out[k] = v
		}
		return out, nil
	}
}

// addInt returns a node function reading "in", adding c, publishing "out".
func addInt(c int64) NodeFunc {
	return func(ctx context.Context, inputs map[string]Value) (map[string]Value, error) {
		n, _ := inputs["in"].AsInt()
		return map[string]Value{"out": Int(n + c)}, nil
	}
}

func TestGraph_AddFirstNode(t *testing.T) {
	g := New("single").
		Add(emit(map[string]Value{"v": Int(1)}), "Source", nil, Outputs{"v": "value"})

	if len(g.nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(g.nodes))
	}
	if got := g.frontier; len(got) != 1 || got[0] != 0 {
		t.Fatalf("unexpected frontier: %v", got)
	}
	if g.nodes[0].Label != "Source" {
		t.Fatalf("unexpected label: %q", g.nodes[0].Label)
	}
	if g.nodes[0].Variant != NoVariant {
		t.Fatalf("plain node should carry no variant tag, got %d", g.nodes[0].Variant)
	}
}

func TestGraph_AddReplicatesPerFrontierMember(t *testing.T) {
	fns := []NodeFunc{addInt(1), addInt(2), addInt(3)}

	g := New("fanout").
		Add(emit(map[string]Value{"v": Int(0)}), "Source", nil, Outputs{"v": "value"}).
		Variants(fns, "Sweep", Inputs{"value": "in"}, Outputs{"out": "swept"}).
		Add(addInt(10), "Continue", Inputs{"swept": "in"}, Outputs{"out": "final"})

	// One continuation node per variant.
	if len(g.frontier) != 3 {
		t.Fatalf("expected 3 continuation nodes, got %d", len(g.frontier))
	}
	if len(g.nodes) != 1+3+3 {
		t.Fatalf("expected 7 nodes total, got %d", len(g.nodes))
	}
}

func TestGraph_AddNilFunctionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for nil node function")
		}
	}()
	New("bad").Add(nil, "Broken", nil, nil)
}

func TestGraph_VariantsTagsAndLabels(t *testing.T) {
	g := New("variants").
		Add(emit(map[string]Value{"v": Int(0)}), "Source", nil, Outputs{"v": "value"}).
		Variants([]NodeFunc{addInt(1), addInt(2)}, "Gain", Inputs{"value": "in"}, Outputs{"out": "gained"})

	if len(g.nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.nodes))
	}

	v0, v1 := g.nodes[1], g.nodes[2]
	if v0.Variant != 0 || v1.Variant != 1 {
		t.Fatalf("unexpected variant tags: %d, %d", v0.Variant, v1.Variant)
	}
	if v0.Label != "Gain (v0)" || v1.Label != "Gain (v1)" {
		t.Fatalf("unexpected labels: %q, %q", v0.Label, v1.Label)
	}
	if !v0.DependsOn(0) || !v1.DependsOn(0) {
		t.Fatalf("variants should attach to the source")
	}
}

func TestGraph_VariantsCartesianProduct(t *testing.T) {
	g := New("cartesian").
		Add(emit(map[string]Value{"v": Int(0)}), "Source", nil, Outputs{"v": "value"}).
		Variants([]NodeFunc{addInt(1), addInt(2)}, "First", Inputs{"value": "in"}, Outputs{"out": "a"}).
		Variants([]NodeFunc{addInt(10), addInt(20)}, "Second", Inputs{"a": "in"}, Outputs{"out": "b"})

	// 2 first-level variants, each continued by 2 second-level functions.
	if len(g.frontier) != 4 {
		t.Fatalf("expected frontier of 4 after cartesian sweep, got %d", len(g.frontier))
	}
	if len(g.nodes) != 1+2+4 {
		t.Fatalf("expected 7 nodes, got %d", len(g.nodes))
	}

	// Each second-level node depends on exactly one first-level variant.
	firstLevel := map[NodeID]bool{1: true, 2: true}
	for _, n := range g.nodes[3:] {
		count := 0
		for _, dep := range n.Deps {
			if firstLevel[dep] {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("node %d should attach to exactly one first-level variant, deps=%v", n.ID, n.Deps)
		}
	}
}

func TestGraph_VariantsRememberBranchPoint(t *testing.T) {
	g := New("bp").
		Add(emit(map[string]Value{"v": Int(0)}), "Source", nil, Outputs{"v": "value"})
	g.Variants([]NodeFunc{addInt(1), addInt(2)}, "Sweep", Inputs{"value": "in"}, Outputs{"out": "s"})

	if len(g.lastBranchPoint) != 1 || g.lastBranchPoint[0] != 0 {
		t.Fatalf("sweep should remember the pre-call frontier, got %v", g.lastBranchPoint)
	}
}

func TestGraph_BranchDuplicatesPerBranchPoint(t *testing.T) {
	sub := New("sub").
		Add(addInt(1), "Inc", Inputs{"value": "in"}, Outputs{"out": "inc"}).
		Add(addInt(2), "Inc2", Inputs{"inc": "in"}, Outputs{"out": "inc2"})

	g := New("main").
		Add(emit(map[string]Value{"v": Int(0)}), "Source", nil, Outputs{"v": "value"}).
		Variants([]NodeFunc{addInt(1), addInt(2)}, "Sweep", Inputs{"value": "in"}, Outputs{"out": "swept"}).
		Add(addInt(0), "Stage", Inputs{"swept": "in"}, Outputs{"out": "value"})

	before := len(g.nodes)
	id := g.Branch(sub)
	if id == 0 {
		t.Fatalf("expected non-zero branch id")
	}

	// 2 branch points, 2 nodes per subgraph.
	created := g.nodes[before:]
	if len(created) != 4 {
		t.Fatalf("expected 4 duplicated nodes, got %d", len(created))
	}
	for _, n := range created {
		if !n.IsBranch || n.Branch != id {
			t.Fatalf("node %d missing branch tag: branch=%d isBranch=%v", n.ID, n.Branch, n.IsBranch)
		}
	}
}

func TestGraph_BranchAfterVariantsFansOutFromOrigin(t *testing.T) {
	sub := New("sub").Add(addInt(5), "AddFive", Inputs{"value": "in"}, Outputs{"out": "plus5"})

	g := New("main").
		Add(emit(map[string]Value{"v": Int(0)}), "Source", nil, Outputs{"v": "value"}).
		Variants([]NodeFunc{addInt(1), addInt(2)}, "Sweep", Inputs{"value": "in"}, Outputs{"out": "swept"})

	before := len(g.nodes)
	id := g.Branch(sub)

	// The sweep remembered the source as branch point, so the branch
	// attaches there rather than to the variant nodes.
	created := g.nodes[before:]
	if len(created) != 1 {
		t.Fatalf("expected 1 duplicated node, got %d", len(created))
	}
	if !created[0].DependsOn(0) {
		t.Fatalf("branch root should attach to the source, deps=%v", created[0].Deps)
	}
	if created[0].Branch != id {
		t.Fatalf("branch tag mismatch: %d vs %d", created[0].Branch, id)
	}
}

func TestGraph_ConsecutiveBranchesShareOrigin(t *testing.T) {
	subA := New("a").Add(addInt(10), "AddTen", Inputs{"value": "in"}, Outputs{"out": "a_result"})
	subB := New("b").Add(addInt(20), "AddTwenty", Inputs{"value": "in"}, Outputs{"out": "b_result"})

	g := New("main").
		Add(emit(map[string]Value{"v": Int(50)}), "Source", nil, Outputs{"v": "value"})

	idA := g.Branch(subA)
	idB := g.Branch(subB)
	if idA == idB {
		t.Fatalf("sibling branches must get distinct ids")
	}

	// Both branch roots attach to the same origin, not to each other.
	var rootA, rootB *Node
	for _, n := range g.nodes {
		switch n.Branch {
		case idA:
			rootA = n
		case idB:
			rootB = n
		}
	}
	if rootA == nil || rootB == nil {
		t.Fatalf("expected one duplicated node per branch")
	}
	if !rootA.DependsOn(0) || !rootB.DependsOn(0) {
		t.Fatalf("both branch roots should attach to the source: %v, %v", rootA.Deps, rootB.Deps)
	}
	if rootB.DependsOn(rootA.ID) {
		t.Fatalf("second branch must not chain onto the first")
	}
}

func TestGraph_BranchSelfPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when branching a graph into itself")
		}
	}()
	g := New("self")
	g.Branch(g)
}

func TestGraph_MergeUnknownBranch(t *testing.T) {
	g := New("bad-merge").
		Add(emit(map[string]Value{"v": Int(1)}), "Source", nil, Outputs{"v": "value"}).
		Merge(addInt(0), "Merge", []MergeInput{{Branch: 99, Name: "x", Param: "in"}}, Outputs{"out": "merged"})

	_, err := g.Build()
	if err == nil {
		t.Fatalf("expected Build to fail for unknown branch")
	}
	if !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("expected ErrUnknownBranch, got %v", err)
	}
}

func TestGraph_MergeCollapsesFrontier(t *testing.T) {
	subA := New("a").Add(addInt(10), "AddTen", Inputs{"value": "in"}, Outputs{"out": "a_result"})
	subB := New("b").Add(addInt(20), "AddTwenty", Inputs{"value": "in"}, Outputs{"out": "b_result"})

	g := New("main").
		Add(emit(map[string]Value{"v": Int(50)}), "Source", nil, Outputs{"v": "value"})
	idA := g.Branch(subA)
	idB := g.Branch(subB)

	g.Merge(func(ctx context.Context, inputs map[string]Value) (map[string]Value, error) {
		a, _ := inputs["a"].AsInt()
		b, _ := inputs["b"].AsInt()
		return map[string]Value{"sum": Int(a + b)}, nil
	}, "Merge", []MergeInput{
		{Branch: idA, Name: "a_result", Param: "a"},
		{Branch: idB, Name: "b_result", Param: "b"},
	}, Outputs{"sum": "total"})

	if len(g.frontier) != 1 {
		t.Fatalf("frontier after merge should be the merge node alone, got %v", g.frontier)
	}
	merge := g.nodes[len(g.nodes)-1]
	if g.frontier[0] != merge.ID {
		t.Fatalf("frontier %v does not point at merge node %d", g.frontier, merge.ID)
	}
	if len(merge.Deps) == 0 {
		t.Fatalf("merge node should depend on the absorbed branch terminals")
	}

	// The merge node's inputs are branch-qualified.
	if _, ok := merge.Inputs[api.BranchQualifiedName(idA, "a_result")]; !ok {
		t.Fatalf("missing qualified input for branch %d: %v", idA, merge.Inputs)
	}
	if _, ok := merge.Inputs[api.BranchQualifiedName(idB, "b_result")]; !ok {
		t.Fatalf("missing qualified input for branch %d: %v", idB, merge.Inputs)
	}
}

func TestGraph_BuildDetectsCycle(t *testing.T) {
	// Two nodes whose declared names read each other.
	g := New("cycle").
		Add(func(ctx context.Context, inputs map[string]Value) (map[string]Value, error) {
			return map[string]Value{"out": Int(1)}, nil
		}, "A", Inputs{"b": "in"}, Outputs{"out": "a"}).
		Add(func(ctx context.Context, inputs map[string]Value) (map[string]Value, error) {
			return map[string]Value{"out": Int(2)}, nil
		}, "B", Inputs{"a": "in"}, Outputs{"out": "b"})

	_, err := g.Build()
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestGraph_BuildResolvesNameDependencies(t *testing.T) {
	// The consumer is added before the producer; name resolution still
	// wires them in the right direction.
	g := New("order-independent").
		Add(addInt(1), "Consumer", Inputs{"value": "in"}, Outputs{"out": "result"}).
		Add(emit(map[string]Value{"v": Int(41)}), "Producer", nil, Outputs{"v": "value"})

	d, err := g.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	order := d.ExecutionOrder()
	pos := make(map[NodeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos[1] > pos[0] {
		t.Fatalf("producer must run before consumer, order=%v", order)
	}

	got, err := d.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if n, _ := got["result"].AsInt(); n != 42 {
		t.Fatalf("expected result=42, got %v", got["result"])
	}
}

func TestGraph_MustBuildPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected MustBuild to panic")
		}
	}()
	New("bad").
		Add(addInt(0), "M", nil, nil).
		Merge(addInt(0), "Merge", []MergeInput{{Branch: 7, Name: "x", Param: "in"}}, nil).
		MustBuild()
}

func TestGraph_StatsCountBranchesAndVariants(t *testing.T) {
	subA := New("a").Add(addInt(10), "AddTen", Inputs{"value": "in"}, Outputs{"out": "a_result"})
	subB := New("b").Add(addInt(20), "AddTwenty", Inputs{"value": "in"}, Outputs{"out": "b_result"})

	g := New("stats").
		Add(emit(map[string]Value{"v": Int(0)}), "Source", nil, Outputs{"v": "value"}).
		Variants([]NodeFunc{addInt(1), addInt(2), addInt(3)}, "Sweep", Inputs{"value": "in"}, Outputs{"out": "swept"})
	g.Branch(subA)
	g.Branch(subB)

	d, err := g.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	stats := d.Stats()
	if stats.Branches != 2 {
		t.Fatalf("expected 2 branches, got %d", stats.Branches)
	}
	if stats.Variants != 3 {
		t.Fatalf("expected 3 variants, got %d", stats.Variants)
	}
	if stats.Nodes != len(d.Nodes()) {
		t.Fatalf("node count mismatch: %d vs %d", stats.Nodes, len(d.Nodes()))
	}
	if stats.Summary() == "" {
		t.Fatalf("expected non-empty summary")
	}
}
