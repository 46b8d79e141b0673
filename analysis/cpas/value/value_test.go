package value

import (
	"context"
	"reflect"
	"testing"

	"github.com/sosy-lab/cpachecker-sub130/analysis/composite"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/location"
	"github.com/sosy-lab/cpachecker-sub130/testutil"
)

func samples() []cpa.AbstractState {
	return []cpa.AbstractState{
		Top(),
		bottom,
		StateOf(map[string]bool{"x": true}),
		StateOf(map[string]bool{"x": false}),
		StateOf(map[string]bool{"y": true}),
		StateOf(map[string]bool{"x": true, "y": true}),
		StateOf(map[string]bool{"x": true, "y": false}),
	}
}

func TestDomainLaws(t *testing.T) {
	d := New().AbstractDomain()
	leq := func(a, b cpa.AbstractState) bool {
		res, err := d.IsLessOrEqual(a, b)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	for _, a := range samples() {
		if !leq(a, a) {
			t.Errorf("%v ⋢ %v", a, a)
		}
		if !leq(d.Bottom(), a) || !leq(a, d.Top()) {
			t.Errorf("%v is not between bottom and top", a)
		}

		for _, b := range samples() {
			if leq(a, b) && leq(b, a) && !a.(*State).Equal(b) {
				t.Errorf("antisymmetry fails for %v and %v", a, b)
			}

			j, err := d.Join(a, b)
			if err != nil {
				t.Fatal(err)
			}
			if !leq(a, j) || !leq(b, j) {
				t.Errorf("join(%v, %v) = %v is not an upper bound", a, b, j)
			}

			for _, c := range samples() {
				if leq(a, b) && leq(b, c) && !leq(a, c) {
					t.Errorf("transitivity fails for %v, %v, %v", a, b, c)
				}
			}
		}
	}
}

func TestJoinKeepsAgreement(t *testing.T) {
	d := New().AbstractDomain()
	a := StateOf(map[string]bool{"x": true, "y": true, "z": false})
	b := StateOf(map[string]bool{"x": true, "y": false})

	j, _ := d.Join(a, b)
	if got := j.(*State).Bindings(); !reflect.DeepEqual(got, map[string]bool{"x": true}) {
		t.Errorf("unexpected join %v", j)
	}

	// b is the join of b and anything below it.
	if j, _ := d.Join(StateOf(map[string]bool{"x": true, "y": false, "z": true}), b); j != b {
		t.Errorf("join should return the reached state itself, got %v", j)
	}
}

func TestMergeOperators(t *testing.T) {
	n := StateOf(map[string]bool{"x": true})
	r := StateOf(map[string]bool{"x": false})

	m, _ := New().MergeOperator().Merge(n, r, EmptyPrecision())
	if m != n {
		t.Errorf("merge-sep returned %v", m)
	}

	m, _ = New(WithMergeJoin()).MergeOperator().Merge(n, r, EmptyPrecision())
	if m.(*State).Len() != 0 {
		t.Errorf("expected the join to lose x, got %v", m)
	}

	m, _ = New(WithMergeJoin()).MergeOperator().Merge(StateOf(map[string]bool{"x": false, "y": true}), r, EmptyPrecision())
	if m != r {
		t.Errorf("merge-join of a smaller state should keep reached, got %v", m)
	}
}

const branchTask = `
entry: a
edges:
  - {from: a, to: b, assume: "x && !y"}
  - {from: b, to: c, assign: "z = x == y"}
  - {from: c, to: d, havoc: x}
  - {from: d, to: e, assume: "z"}
  - {from: d, to: f, assume: "u || v"}
`

func TestTransfer(t *testing.T) {
	c := testutil.LoadTask(t, branchTask)
	tr := New().TransferRelation()
	p := FullPrecision()

	step := func(s cpa.AbstractState, from, to string) []cpa.AbstractState {
		succs, err := tr.Successors(context.Background(), s, p, testutil.Edge(t, c, from, to))
		if err != nil {
			t.Fatal(err)
		}
		return succs
	}
	only := func(succs []cpa.AbstractState) *State {
		if len(succs) != 1 {
			t.Fatalf("expected one successor, got %v", succs)
		}
		return succs[0].(*State)
	}

	s := only(step(Top(), "a", "b"))
	if got := s.Bindings(); !reflect.DeepEqual(got, map[string]bool{"x": true, "y": false}) {
		t.Errorf("assume did not bind its literals: %v", s)
	}

	if succs := step(StateOf(map[string]bool{"y": true}), "a", "b"); len(succs) != 0 {
		t.Errorf("infeasible assume produced %v", succs)
	}

	s = only(step(s, "b", "c"))
	if v, ok := s.Value("z"); !ok || v {
		t.Errorf("expected z to be false, got %v", s)
	}

	s = only(step(s, "c", "d"))
	if _, ok := s.Value("x"); ok {
		t.Errorf("havoc kept x: %v", s)
	}

	if succs := step(s, "d", "e"); len(succs) != 0 {
		t.Errorf("assume z with z false produced %v", succs)
	}
	if s2 := only(step(s, "d", "f")); !s2.Equal(s) {
		t.Errorf("disjunctions should not bind anything, got %v", s2)
	}

	if succs := step(bottom, "a", "b"); len(succs) != 0 {
		t.Errorf("bottom has successors %v", succs)
	}
}

func TestPrecisionRefine(t *testing.T) {
	c := testutil.LoadTask(t, branchTask)
	b := testutil.Node(t, c, "b")

	p := EmptyPrecision()
	r, changed := p.Refine(b, []string{"x", "y"})
	if !changed {
		t.Fatal("refinement should grow the precision")
	}
	if got := r.(*Precision).TrackedAt(b); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("unexpected tracked variables %v", got)
	}
	if p.Tracks(b, "x") {
		t.Error("refinement mutated the original precision")
	}

	if _, changed := r.(*Precision).Refine(b, []string{"y"}); changed {
		t.Error("refining with known variables should not change the precision")
	}
	if _, changed := r.(*Precision).Refine(b, 42); changed {
		t.Error("foreign increments should be ignored")
	}
	if _, changed := FullPrecision().Refine(b, []string{"q"}); changed {
		t.Error("the full precision cannot grow")
	}
}

func TestAbstraction(t *testing.T) {
	c := testutil.LoadTask(t, branchTask)
	b := testutil.Node(t, c, "b")

	prec, _ := EmptyPrecision().Refine(b, []string{"x"})
	s := StateOf(map[string]bool{"x": true, "y": false})
	full := composite.NewState(location.StateOf(b), s)

	res, err := New().PrecisionAdjustment().Prec(context.Background(), s, prec, nil, full)
	if err != nil {
		t.Fatal(err)
	}
	if res.Action != cpa.Continue {
		t.Errorf("unexpected action %v", res.Action)
	}
	if got := res.State.(*State).Bindings(); !reflect.DeepEqual(got, map[string]bool{"x": true}) {
		t.Errorf("expected only x to survive, got %v", res.State)
	}

	// Elsewhere nothing is tracked.
	other := composite.NewState(location.StateOf(testutil.Node(t, c, "c")), s)
	res, _ = New().PrecisionAdjustment().Prec(context.Background(), s, prec, nil, other)
	if res.State.(*State).Len() != 0 {
		t.Errorf("expected every binding to be dropped, got %v", res.State)
	}
}

func TestString(t *testing.T) {
	s := StateOf(map[string]bool{"b": false, "a": true, "c": true})
	if got := s.String(); got != "{a, !b, c}" {
		t.Errorf("unexpected rendering %q", got)
	}

	c := testutil.LoadTask(t, branchTask)
	p, _ := EmptyPrecision().Refine(testutil.Node(t, c, "b"), []string{"y", "x"})
	if got := p.String(); got != "[b: x y]" {
		t.Errorf("unexpected precision rendering %q", got)
	}
}

var _ cpa.RefinablePrecision = (*Precision)(nil)
