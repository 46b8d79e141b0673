// Package arg maintains the abstract reachability graph: the record of which
// abstract state was derived from which, and which states are covered by
// others. States live in an arena and refer to each other by handle, so a
// handle to a removed state is detected on lookup instead of dangling.
package arg

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/utils/graph"
)

var ErrNoPath = errors.New("no path from a root")

// Handle identifies a state of the graph. The zero handle is never valid.
type Handle uint32

func (h Handle) String() string { return fmt.Sprintf("s%d", h) }

type State struct {
	handle   Handle
	wrapped  cpa.AbstractState
	parents  []Handle
	children []Handle
	// Edge from each parent to this state.
	edges     map[Handle]*cfa.Edge
	coveredBy Handle
	covers    []Handle
}

func (s *State) Handle() Handle { return s.handle }

// Wrapped is the analysis state the node stands for.
func (s *State) Wrapped() cpa.AbstractState { return s.wrapped }

func (s *State) IsTarget() bool { return cpa.IsTarget(s.wrapped) }

func (s *State) Location() *cfa.Node {
	loc, _ := cpa.ExtractLocation(s.wrapped)
	return loc
}

func (s *State) Parents() []Handle  { return s.parents }
func (s *State) Children() []Handle { return s.children }

// EdgeFrom is the CFA edge taken from parent to this state.
func (s *State) EdgeFrom(parent Handle) *cfa.Edge { return s.edges[parent] }

func (s *State) IsCovered() bool { return s.coveredBy != 0 }

func (s *State) String() string {
	return fmt.Sprintf("%v %v", s.handle, s.wrapped)
}

type ARG struct {
	states map[Handle]*State
	roots  []Handle
	last   Handle
}

func New() *ARG {
	return &ARG{states: map[Handle]*State{}}
}

func (g *ARG) Size() int { return len(g.states) }

func (g *ARG) Roots() []Handle { return g.roots }

func (g *ARG) Lookup(h Handle) (*State, bool) {
	s, ok := g.states[h]
	return s, ok
}

func (g *ARG) get(h Handle) *State {
	s, ok := g.states[h]
	if !ok {
		panic(fmt.Errorf("arg: %v is not part of the graph", h))
	}
	return s
}

// States lists the live states in creation order.
func (g *ARG) States() []*State {
	res := make([]*State, 0, len(g.states))
	for _, s := range g.states {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].handle < res[j].handle })
	return res
}

func (g *ARG) newState(w cpa.AbstractState) *State {
	g.last++
	s := &State{
		handle:  g.last,
		wrapped: w,
		edges:   map[Handle]*cfa.Edge{},
	}
	g.states[s.handle] = s
	return s
}

func (g *ARG) AddRoot(w cpa.AbstractState) *State {
	s := g.newState(w)
	g.roots = append(g.roots, s.handle)
	return s
}

// AddChild creates a state derived from parent along edge.
func (g *ARG) AddChild(parent Handle, w cpa.AbstractState, edge *cfa.Edge) *State {
	p := g.get(parent)
	s := g.newState(w)
	g.link(p, s, edge)
	return s
}

// Link records that child is also derived from parent along edge.
func (g *ARG) Link(parent, child Handle, edge *cfa.Edge) {
	g.link(g.get(parent), g.get(child), edge)
}

func (g *ARG) link(p, c *State, edge *cfa.Edge) {
	if _, ok := c.edges[p.handle]; !ok {
		p.children = append(p.children, c.handle)
		c.parents = append(c.parents, p.handle)
	}
	c.edges[p.handle] = edge
}

// Cover marks h as covered by another state.
func (g *ARG) Cover(h, by Handle) {
	s, c := g.get(h), g.get(by)
	if s.coveredBy != 0 {
		g.Uncover(h)
	}
	s.coveredBy = by
	c.covers = append(c.covers, h)
}

func (g *ARG) Uncover(h Handle) {
	s := g.get(h)
	if c, ok := g.states[s.coveredBy]; ok {
		c.covers = without(c.covers, h)
	}
	s.coveredBy = 0
}

// CoveredBy returns the state covering h. A covering state that no longer
// exists is reported as absent.
func (g *ARG) CoveredBy(h Handle) (Handle, bool) {
	s, ok := g.states[h]
	if !ok || s.coveredBy == 0 {
		return 0, false
	}
	if _, ok := g.states[s.coveredBy]; !ok {
		return 0, false
	}
	return s.coveredBy, true
}

// Covered lists the states covered by h.
func (g *ARG) Covered(h Handle) []Handle { return g.get(h).covers }

func without(hs []Handle, h Handle) []Handle {
	res := make([]Handle, 0, len(hs))
	for _, x := range hs {
		if x != h {
			res = append(res, x)
		}
	}
	return res
}

// ReplaceWith substitutes a fresh state wrapping merged for old. The new
// state takes over the parents, children and coverage relations of old,
// which is then discarded.
func (g *ARG) ReplaceWith(old Handle, merged cpa.AbstractState) *State {
	o := g.get(old)
	m := g.newState(merged)
	subst := func(h Handle) Handle {
		if h == old {
			return m.handle
		}
		return h
	}
	substAll := func(hs []Handle) []Handle {
		res := make([]Handle, len(hs))
		for i, h := range hs {
			res[i] = subst(h)
		}
		return res
	}

	m.parents = substAll(o.parents)
	m.children = substAll(o.children)
	m.covers = substAll(o.covers)
	for p, e := range o.edges {
		m.edges[subst(p)] = e
	}

	for _, p := range o.parents {
		if p != old {
			ps := g.get(p)
			ps.children = substAll(ps.children)
		}
	}
	for _, c := range o.children {
		if c != old {
			cs := g.get(c)
			cs.parents = substAll(cs.parents)
			cs.edges[m.handle] = cs.edges[old]
			delete(cs.edges, old)
		}
	}
	for _, c := range o.covers {
		if c != old {
			g.get(c).coveredBy = m.handle
		}
	}
	if cov, ok := g.states[o.coveredBy]; ok && o.coveredBy != old {
		m.coveredBy = o.coveredBy
		cov.covers = substAll(cov.covers)
	}
	g.roots = substAll(g.roots)

	delete(g.states, old)
	return m
}

// Removal describes the effect of removing a subtree.
type Removal struct {
	// Removed states in creation order.
	Removed []Handle
	// States that lost their covering state and must be explored again.
	Uncovered []Handle
	// Surviving states that lost a child.
	Parents []Handle
}

func (g *ARG) childGraph(skip Handle) graph.Graph[Handle] {
	return graph.OfHashable(func(h Handle) []Handle {
		var res []Handle
		for _, c := range g.get(h).children {
			if c != skip {
				res = append(res, c)
			}
		}
		return res
	})
}

// RemoveSubtree detaches h together with every descendant that is not
// reachable from a root without passing through h.
func (g *ARG) RemoveSubtree(h Handle) Removal {
	g.get(h)

	live := map[Handle]bool{}
	var roots []Handle
	for _, r := range g.roots {
		if r != h {
			roots = append(roots, r)
		}
	}
	if len(roots) > 0 {
		for _, x := range g.childGraph(h).Reachable(roots...) {
			live[x] = true
		}
	}

	removed := map[Handle]bool{}
	var res Removal
	for _, x := range g.childGraph(0).Reachable(h) {
		if !live[x] {
			removed[x] = true
			res.Removed = append(res.Removed, x)
		}
	}
	sort.Slice(res.Removed, func(i, j int) bool { return res.Removed[i] < res.Removed[j] })

	parents := map[Handle]bool{}
	uncovered := map[Handle]bool{}
	for _, x := range res.Removed {
		s := g.get(x)
		for _, p := range s.parents {
			if !removed[p] {
				ps := g.get(p)
				ps.children = without(ps.children, x)
				parents[p] = true
			}
		}
		for _, c := range s.children {
			if !removed[c] {
				cs := g.get(c)
				cs.parents = without(cs.parents, x)
				delete(cs.edges, x)
			}
		}
		if c, ok := g.states[s.coveredBy]; ok && !removed[s.coveredBy] {
			c.covers = without(c.covers, x)
		}
		for _, c := range s.covers {
			if !removed[c] {
				g.get(c).coveredBy = 0
				uncovered[c] = true
			}
		}
	}

	for _, x := range res.Removed {
		delete(g.states, x)
		g.roots = without(g.roots, x)
	}

	res.Parents = sortedKeys(parents)
	res.Uncovered = sortedKeys(uncovered)
	return res
}

func sortedKeys(m map[Handle]bool) []Handle {
	res := make([]Handle, 0, len(m))
	for h := range m {
		res = append(res, h)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
