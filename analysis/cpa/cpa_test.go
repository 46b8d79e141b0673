package cpa

import (
	"context"
	"errors"
	"testing"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
)

type token string

func (t token) String() string { return string(t) }

func flatSamples(d AbstractDomain) []AbstractState {
	return []AbstractState{d.Top(), d.Bottom(), token("a"), token("b")}
}

func TestFlatLatticeLaws(t *testing.T) {
	d := NewFlatLatticeDomain()
	leq := func(a, b AbstractState) bool {
		res, err := d.IsLessOrEqual(a, b)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	samples := flatSamples(d)
	for _, a := range samples {
		if !leq(a, a) {
			t.Errorf("reflexivity fails for %v", a)
		}
		if !leq(d.Bottom(), a) || !leq(a, d.Top()) {
			t.Errorf("%v is not between bottom and top", a)
		}
		for _, b := range samples {
			if leq(a, b) && leq(b, a) && a != b {
				t.Errorf("antisymmetry fails for %v, %v", a, b)
			}

			j, err := d.Join(a, b)
			if err != nil {
				t.Fatal(err)
			}
			if !leq(a, j) || !leq(b, j) {
				t.Errorf("join(%v, %v) = %v is not an upper bound", a, b, j)
			}

			for _, c := range samples {
				if leq(a, b) && leq(b, c) && !leq(a, c) {
					t.Errorf("transitivity fails for %v, %v, %v", a, b, c)
				}
			}
		}
	}

	if j, _ := d.Join(token("a"), token("b")); j != d.Top() {
		t.Errorf("distinct elements should join to top, got %v", j)
	}
}

func TestMergeSepIsIdentity(t *testing.T) {
	n, r := token("n"), token("r")
	for i := 0; i < 3; i++ {
		m, err := MergeSep{}.Merge(n, r, SingletonPrecision{})
		if err != nil || m != n {
			t.Fatalf("merge-sep returned %v, %v", m, err)
		}
	}
}

func TestMergeJoin(t *testing.T) {
	d := NewFlatLatticeDomain()
	m := MergeJoin{d}

	if res, _ := m.Merge(token("a"), token("a"), nil); res != token("a") {
		t.Errorf("merging equal states should keep the reached state, got %v", res)
	}
	if res, _ := m.Merge(d.Bottom(), token("a"), nil); res != token("a") {
		t.Errorf("merging bottom should keep the reached state, got %v", res)
	}
	if res, _ := m.Merge(token("a"), token("b"), nil); res != d.Top() {
		t.Errorf("expected top, got %v", res)
	}
}

func TestStopOperators(t *testing.T) {
	d := NewFlatLatticeDomain()
	reached := []AbstractState{token("b"), token("a")}

	i, err := StopSep{d}.CoveredBy(token("a"), reached, nil)
	if err != nil || i != 1 {
		t.Errorf("expected a to be covered by index 1, got %d (%v)", i, err)
	}
	if stop, _ := (StopSep{d}).Stop(token("c"), reached, nil); stop {
		t.Error("c should not be covered")
	}
	if stop, _ := (StopSep{d}).Stop(token("c"), append(reached, d.Top()), nil); !stop {
		t.Error("top covers everything")
	}
	if stop, _ := (StopNever{}).Stop(token("a"), reached, nil); stop {
		t.Error("stop-never stopped")
	}
	if stop, _ := (StopAlways{}).Stop(token("z"), nil, nil); !stop {
		t.Error("stop-always did not stop")
	}
}

type bundle struct {
	d     AbstractDomain
	merge MergeOperator
	stop  StopOperator
}

func (b bundle) AbstractDomain() AbstractDomain           { return b.d }
func (b bundle) TransferRelation() TransferRelation       { return identityTransfer{} }
func (b bundle) MergeOperator() MergeOperator             { return b.merge }
func (b bundle) StopOperator() StopOperator               { return b.stop }
func (b bundle) PrecisionAdjustment() PrecisionAdjustment { return StaticPrecisionAdjustment{} }
func (b bundle) InitialState(*cfa.Node) (AbstractState, error) {
	return token("init"), nil
}
func (b bundle) InitialPrecision(n *cfa.Node) (Precision, error) { return StaticPrecision(n) }

type identityTransfer struct{}

func (identityTransfer) Successors(_ context.Context, s AbstractState, _ Precision, _ *cfa.Edge) ([]AbstractState, error) {
	return []AbstractState{s}, nil
}

func TestCheckWiring(t *testing.T) {
	d := NewFlatLatticeDomain()

	if err := CheckWiring(bundle{d, MergeJoin{d}, StopSep{d}}); err != nil {
		t.Errorf("consistent wiring rejected: %v", err)
	}

	var ae *AnalysisError
	err := CheckWiring(bundle{d, MergeJoin{d}, StopSep{NewFlatLatticeDomain()}})
	if !errors.As(err, &ae) {
		t.Errorf("expected an AnalysisError for a foreign stop domain, got %v", err)
	}

	if err := CheckWiring(bundle{d, nil, StopSep{d}}); err == nil {
		t.Error("expected an error for a missing merge operator")
	}
}

func TestSolverErrorIsInterruption(t *testing.T) {
	cause := errors.New("out of memory")
	err := error(&SolverError{cause})
	if !errors.Is(err, ErrInterrupted) || !errors.Is(err, cause) {
		t.Errorf("unexpected error chain for %v", err)
	}
}

func TestCheckInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if err := CheckInterrupt(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	err := CheckInterrupt(ctx)
	if !errors.Is(err, ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Errorf("unexpected error %v", err)
	}
}

type located struct{ n *cfa.Node }

func (l located) String() string      { return l.n.String() }
func (l located) Location() *cfa.Node { return l.n }
func (l located) IsTarget() bool      { return l.n.IsError() }
func (l located) Equal(o AbstractState) bool {
	ol, ok := o.(located)
	return ok && ol.n == l.n
}

func TestQueries(t *testing.T) {
	b := cfa.NewBuilder()
	n := b.Node("err")
	b.MarkError(n)

	s := located{n}
	if loc, ok := ExtractLocation(s); !ok || loc != n {
		t.Error("location not extracted")
	}
	if _, ok := ExtractLocation(token("x")); ok {
		t.Error("tokens have no location")
	}
	if !IsTarget(s) || IsTarget(token("x")) {
		t.Error("unexpected target classification")
	}
	if !Equal(s, located{n}) || Equal(token("x"), token("y")) {
		t.Error("unexpected equality")
	}
	if Identical[any]([]int{1}, []int{1}) {
		t.Error("slices are never identical")
	}
}
