package location

import (
	"context"
	"testing"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/testutil"
)

func TestTransferFollowsEdges(t *testing.T) {
	c := testutil.LoadTask(t, `
entry: a
errors: [err]
edges:
  - {from: a, to: b}
  - {from: b, to: err}
`)
	l := New()
	ab, berr := testutil.Edge(t, c, "a", "b"), testutil.Edge(t, c, "b", "err")

	s0, _ := l.InitialState(c.Entry())
	succs, err := l.TransferRelation().Successors(context.Background(), s0, nil, ab)
	if err != nil || len(succs) != 1 || succs[0].(State).Location() != ab.Succ() {
		t.Fatalf("unexpected successors %v (%v)", succs, err)
	}
	if cpa.IsTarget(succs[0]) {
		t.Error("b is not an error node")
	}

	if succs, _ := l.TransferRelation().Successors(context.Background(), s0, nil, berr); len(succs) != 0 {
		t.Errorf("edge not leaving the state's node produced %v", succs)
	}
	if succs, _ := l.TransferRelation().Successors(context.Background(), l.AbstractDomain().Bottom(), nil, ab); len(succs) != 0 {
		t.Errorf("bottom produced %v", succs)
	}

	errState := StateOf(berr.Succ())
	if !cpa.IsTarget(errState) {
		t.Error("error node state is not a target")
	}
	if err := cpa.CheckWiring(l); err != nil {
		t.Error(err)
	}
}

func TestSameLocationCovers(t *testing.T) {
	c := testutil.LoadTask(t, "entry: a\nedges: [{from: a, to: b}]")
	l := New()
	a, b := StateOf(c.Entry()), StateOf(testutil.Node(t, c, "b"))

	stop, _ := l.StopOperator().Stop(StateOf(c.Entry()), []cpa.AbstractState{b, a}, nil)
	if !stop {
		t.Error("equal locations should cover each other")
	}
	stop, _ = l.StopOperator().Stop(a, []cpa.AbstractState{b}, nil)
	if stop {
		t.Error("different locations should not cover each other")
	}
}
