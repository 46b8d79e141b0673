package bounds

import (
	"context"
	"testing"

	"github.com/sosy-lab/cpachecker-sub130/analysis/composite"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/location"
	"github.com/sosy-lab/cpachecker-sub130/testutil"
)

const loop = `
entry: init
edges:
  - {from: init, to: head}
  - {from: head, to: body, assume: "!done"}
  - {from: body, to: head, havoc: done}
  - {from: head, to: exit, assume: "done"}
`

func TestCountsLoopHeadVisits(t *testing.T) {
	c := testutil.LoadTask(t, loop)
	head := testutil.Node(t, c, "head")

	prod, err := composite.New(location.New(), New(2))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	s, _ := prod.InitialState(c.Entry())
	p, _ := prod.InitialPrecision(c.Entry())

	path := [][2]string{{"init", "head"}, {"head", "body"}, {"body", "head"}, {"head", "body"}, {"body", "head"}}
	var actions []cpa.Action
	for _, step := range path {
		succs, err := prod.TransferRelation().Successors(ctx, s, p, testutil.Edge(t, c, step[0], step[1]))
		if err != nil || len(succs) != 1 {
			t.Fatalf("%v: unexpected successors %v (%v)", step, succs, err)
		}
		res, err := prod.PrecisionAdjustment().Prec(ctx, succs[0], p, nil, succs[0])
		if err != nil {
			t.Fatal(err)
		}
		s = res.State
		actions = append(actions, res.Action)
	}

	if n := s.(*composite.State).Get(1).(*State).Count(head); n != 3 {
		t.Errorf("expected three visits of head, got %d", n)
	}
	for i, a := range actions {
		exp := cpa.Continue
		if i == len(actions)-1 {
			exp = cpa.Break
		}
		if a != exp {
			t.Errorf("step %d: expected %v, got %v", i, exp, a)
		}
	}
}

func TestFlatOrder(t *testing.T) {
	c := testutil.LoadTask(t, loop)
	head := testutil.Node(t, c, "head")
	d := New(1).AbstractDomain()

	a, b := newState().visit(head), newState().visit(head)
	if leq, _ := d.IsLessOrEqual(a, b); !leq {
		t.Error("equal counters should be ordered")
	}
	if leq, _ := d.IsLessOrEqual(a, a.visit(head)); leq {
		t.Error("different counters should be incomparable")
	}
	if got := a.visit(head).String(); got != "loops{head×2}" {
		t.Errorf("unexpected rendering %q", got)
	}
}
