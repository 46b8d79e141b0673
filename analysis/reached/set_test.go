package reached

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/location"
	"github.com/sosy-lab/cpachecker-sub130/testutil"
)

const diamond = `
entry: a
errors: [err]
edges:
  - {from: a, to: b, assume: "x"}
  - {from: a, to: c, assume: "!x"}
  - {from: b, to: d}
  - {from: c, to: d}
  - {from: d, to: err}
`

type env struct {
	t *testing.T
	c *cfa.CFA
	s *Set
}

func newEnv(t *testing.T, policy Policy) env {
	return env{t, testutil.LoadTask(t, diamond), New(policy)}
}

func (e env) at(name string) location.State {
	return location.StateOf(testutil.Node(e.t, e.c, name))
}

func (e env) root() *arg.State {
	return e.s.AddInitial(e.at("a"), cpa.SingletonPrecision{})
}

func (e env) child(parent *arg.State, name string) *arg.State {
	edge := testutil.Edge(e.t, e.c, parent.Location().Name(), name)
	return e.s.Add(parent.Handle(), e.at(name), cpa.SingletonPrecision{}, edge)
}

func (e env) drain() []string {
	var order []string
	for {
		a, _, ok := e.s.Pop()
		if !ok {
			return order
		}
		order = append(order, a.Location().Name())
	}
}

func TestWaitlistOrder(t *testing.T) {
	for policy, exp := range map[Policy][]string{
		DFS: {"c", "b"},
		BFS: {"b", "c"},
	} {
		e := newEnv(t, policy)
		a := e.root()
		e.s.Pop()
		e.child(a, "b")
		e.child(a, "c")
		assert.Equal(t, exp, e.drain(), policy.String())
	}
}

func TestTopologicalOrder(t *testing.T) {
	e := newEnv(t, Topological)
	a := e.root()
	e.s.Pop()
	b := e.child(a, "b")
	e.child(b, "d")
	e.child(a, "c")

	prev := -1
	for {
		x, _, ok := e.s.Pop()
		if !ok {
			break
		}
		rpo := x.Location().ReversePostOrder()
		assert.GreaterOrEqual(t, rpo, prev, "states must come out in reverse post-order")
		prev = rpo
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{DFS, BFS, Topological} {
		q, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, q)
	}
	_, err := ParsePolicy("random")
	assert.Error(t, err)
}

func TestEntriesAreUnique(t *testing.T) {
	e := newEnv(t, BFS)
	a := e.root()
	e.s.ReAdd(a.Handle(), cpa.SingletonPrecision{})
	assert.Equal(t, 1, e.s.Size())
	assert.Equal(t, 1, e.s.WaitlistLen())
}

func TestTargetsAreNotExpanded(t *testing.T) {
	e := newEnv(t, DFS)
	a := e.root()
	e.s.Pop()
	b := e.child(a, "b")
	e.s.Pop()
	d := e.child(b, "d")
	e.s.Pop()
	err := e.child(d, "err")

	assert.True(t, e.s.Contains(err.Handle()))
	assert.False(t, e.s.IsWaiting(err.Handle()))
	assert.Equal(t, []arg.Handle{err.Handle()}, e.s.Targets())
	assert.False(t, e.s.HasWaiting())

	e.s.Remove(err.Handle())
	assert.Empty(t, e.s.Targets())
}

func TestReachedAt(t *testing.T) {
	e := newEnv(t, DFS)
	a := e.root()
	b := e.child(a, "b")
	c := e.child(a, "c")
	d1 := e.child(b, "d")
	d2 := e.child(c, "d")

	d := testutil.Node(t, e.c, "d")
	assert.Equal(t, []*arg.State{d1, d2}, e.s.ReachedAt(d))
	assert.Len(t, e.s.StatesAt(d), 2)

	e.s.Remove(d1.Handle())
	assert.Equal(t, []*arg.State{d2}, e.s.ReachedAt(d))
	assert.False(t, e.s.IsWaiting(d1.Handle()))
	// The graph still knows the state.
	_, ok := e.s.ARG().Lookup(d1.Handle())
	assert.True(t, ok)
}

func TestReplaceMerged(t *testing.T) {
	e := newEnv(t, DFS)
	a := e.root()
	b := e.child(a, "b")
	d := e.child(b, "d")
	for e.s.HasWaiting() {
		e.s.Pop()
	}

	m := e.s.ReplaceMerged(d.Handle(), e.at("d"), cpa.SingletonPrecision{})
	assert.False(t, e.s.Contains(d.Handle()))
	assert.True(t, e.s.Contains(m.Handle()))
	assert.True(t, e.s.IsWaiting(m.Handle()))
	assert.Equal(t, []arg.Handle{b.Handle()}, m.Parents())
	assert.Equal(t, []*arg.State{m}, e.s.ReachedAt(testutil.Node(t, e.c, "d")))
}

// Removing a covering state puts the states it covered back into the
// reached set and on the waitlist, and leaves no reference to removed
// states behind.
func TestRemoveSubtreeReenqueuesCovered(t *testing.T) {
	e := newEnv(t, DFS)
	a := e.root()
	b := e.child(a, "b")
	c := e.child(a, "c")
	d1 := e.child(b, "d")
	dEdge := testutil.Edge(t, e.c, "c", "d")
	d2 := e.s.AddCovered(c.Handle(), e.at("d"), cpa.SingletonPrecision{}, dEdge, d1.Handle())
	e.drain()

	require.False(t, e.s.Contains(d2.Handle()), "covered states are not entries")
	require.True(t, d2.IsCovered())

	r := e.s.RemoveSubtree(b.Handle())
	assert.Equal(t, []arg.Handle{b.Handle(), d1.Handle()}, r.Removed)
	assert.Equal(t, []arg.Handle{d2.Handle()}, r.Uncovered)

	assert.True(t, e.s.Contains(d2.Handle()))
	assert.True(t, e.s.IsWaiting(d2.Handle()))
	assert.False(t, d2.IsCovered())
	assert.Equal(t, 3, e.s.Size())

	removed := map[arg.Handle]bool{}
	for _, h := range r.Removed {
		removed[h] = true
		assert.False(t, e.s.Contains(h))
		assert.False(t, e.s.IsWaiting(h))
		assert.Nil(t, e.s.Precision(h))
	}
	for _, st := range e.s.Entries() {
		for _, p := range st.Parents() {
			assert.False(t, removed[p], "%v has removed parent %v", st.Handle(), p)
		}
		if by, ok := e.s.ARG().CoveredBy(st.Handle()); ok {
			assert.False(t, removed[by])
		}
	}
}

func TestRemoveSubtreeFromWaitlist(t *testing.T) {
	e := newEnv(t, Topological)
	a := e.root()
	e.s.Pop()
	b := e.child(a, "b")
	e.child(b, "d")
	c := e.child(a, "c")

	e.s.RemoveSubtree(b.Handle())
	x, _, ok := e.s.Pop()
	require.True(t, ok)
	assert.Equal(t, c.Handle(), x.Handle())
	_, _, ok = e.s.Pop()
	assert.False(t, ok)
}
