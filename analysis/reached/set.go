// Package reached keeps the states explored so far together with the
// precision each was produced with, and the waitlist of states that still
// need expanding. Every entry is backed by a state of the abstract
// reachability graph.
package reached

import (
	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
)

// Set is the reached set. Covered states are kept in the graph only; they
// become entries again once their covering state disappears. Target states
// are entries but are never put on the waitlist.
type Set struct {
	graph    *arg.ARG
	waitlist Waitlist
	// Waitlist ordering keys, captured when a state is enqueued.
	order map[arg.Handle]int

	entries   map[arg.Handle]*cfa.Node
	byLoc     map[*cfa.Node][]arg.Handle
	precision map[arg.Handle]cpa.Precision
	targets   []arg.Handle
}

func New(policy Policy) *Set {
	s := &Set{
		graph:     arg.New(),
		order:     map[arg.Handle]int{},
		entries:   map[arg.Handle]*cfa.Node{},
		byLoc:     map[*cfa.Node][]arg.Handle{},
		precision: map[arg.Handle]cpa.Precision{},
	}
	switch policy {
	case BFS:
		s.waitlist = newDeque(false)
	case Topological:
		s.waitlist = newPriority(func(h arg.Handle) int { return s.order[h] })
	default:
		s.waitlist = newDeque(true)
	}
	return s
}

func (s *Set) ARG() *arg.ARG { return s.graph }

// Size is the number of reached entries.
func (s *Set) Size() int { return len(s.entries) }

func (s *Set) Contains(h arg.Handle) bool {
	_, ok := s.entries[h]
	return ok
}

func (s *Set) HasWaiting() bool { return s.waitlist.Len() > 0 }

func (s *Set) WaitlistLen() int { return s.waitlist.Len() }

func (s *Set) IsWaiting(h arg.Handle) bool { return s.waitlist.Contains(h) }

// Precision returns the precision the state was produced with.
func (s *Set) Precision(h arg.Handle) cpa.Precision { return s.precision[h] }

// AddInitial adds a root state.
func (s *Set) AddInitial(st cpa.AbstractState, p cpa.Precision) *arg.State {
	a := s.graph.AddRoot(st)
	s.precision[a.Handle()] = p
	s.enter(a)
	return a
}

// Add records a successor of parent along edge.
func (s *Set) Add(parent arg.Handle, st cpa.AbstractState, p cpa.Precision, edge *cfa.Edge) *arg.State {
	a := s.graph.AddChild(parent, st, edge)
	s.precision[a.Handle()] = p
	s.enter(a)
	return a
}

// AddCovered records a successor of parent that is covered by an existing
// entry. It is not an entry itself and is not expanded.
func (s *Set) AddCovered(parent arg.Handle, st cpa.AbstractState, p cpa.Precision, edge *cfa.Edge, by arg.Handle) *arg.State {
	a := s.graph.AddChild(parent, st, edge)
	s.precision[a.Handle()] = p
	s.graph.Cover(a.Handle(), by)
	return a
}

func (s *Set) enter(a *arg.State) {
	h := a.Handle()
	if _, ok := s.entries[h]; ok {
		return
	}
	loc := a.Location()
	s.entries[h] = loc
	s.byLoc[loc] = append(s.byLoc[loc], h)
	if a.IsTarget() {
		s.targets = append(s.targets, h)
		return
	}
	s.enqueue(h, loc)
}

func (s *Set) enqueue(h arg.Handle, loc *cfa.Node) {
	if loc != nil {
		s.order[h] = loc.ReversePostOrder()
	}
	s.waitlist.Add(h)
}

// Pop takes the next state from the waitlist.
func (s *Set) Pop() (*arg.State, cpa.Precision, bool) {
	for {
		h, ok := s.waitlist.Pop()
		if !ok {
			return nil, nil, false
		}
		delete(s.order, h)
		if a, ok := s.graph.Lookup(h); ok {
			return a, s.precision[h], true
		}
	}
}

// ReAdd puts an entry back on the waitlist with a new precision.
func (s *Set) ReAdd(h arg.Handle, p cpa.Precision) {
	a, ok := s.graph.Lookup(h)
	if !ok {
		return
	}
	s.precision[h] = p
	if _, ok := s.entries[h]; !ok {
		s.enter(a)
		return
	}
	if !a.IsTarget() {
		s.enqueue(h, a.Location())
	}
}

// Remove drops the entry from the reached set and the waitlist. The
// graph is left untouched.
func (s *Set) Remove(h arg.Handle) {
	s.waitlist.Remove(h)
	if loc, ok := s.entries[h]; ok {
		delete(s.entries, h)
		hs := s.byLoc[loc]
		for i, x := range hs {
			if x == h {
				s.byLoc[loc] = append(hs[:i:i], hs[i+1:]...)
				break
			}
		}
		if len(s.byLoc[loc]) == 0 {
			delete(s.byLoc, loc)
		}
	}
	for i, x := range s.targets {
		if x == h {
			s.targets = append(s.targets[:i:i], s.targets[i+1:]...)
			break
		}
	}
}

// ReachedAt lists the entries at a location in insertion order.
func (s *Set) ReachedAt(loc *cfa.Node) []*arg.State {
	hs := s.byLoc[loc]
	res := make([]*arg.State, 0, len(hs))
	for _, h := range hs {
		if a, ok := s.graph.Lookup(h); ok {
			res = append(res, a)
		}
	}
	return res
}

// StatesAt implements cpa.ReachedView.
func (s *Set) StatesAt(loc *cfa.Node) []cpa.AbstractState {
	as := s.ReachedAt(loc)
	res := make([]cpa.AbstractState, len(as))
	for i, a := range as {
		res[i] = a.Wrapped()
	}
	return res
}

var _ cpa.ReachedView = (*Set)(nil)

// Entries lists all reached entries in creation order.
func (s *Set) Entries() []*arg.State {
	var res []*arg.State
	for _, a := range s.graph.States() {
		if _, ok := s.entries[a.Handle()]; ok {
			res = append(res, a)
		}
	}
	return res
}

// Targets lists the target entries that have not been resolved yet.
func (s *Set) Targets() []arg.Handle { return s.targets }

// ReplaceMerged substitutes the result of a merge for the entry old. The
// merged state takes over the graph relations of old and is put on the
// waitlist.
func (s *Set) ReplaceMerged(old arg.Handle, merged cpa.AbstractState, p cpa.Precision) *arg.State {
	s.Remove(old)
	m := s.graph.ReplaceWith(old, merged)
	delete(s.precision, old)
	s.precision[m.Handle()] = p
	s.enter(m)
	return m
}

// RemoveSubtree removes h with its exclusive descendants from the graph
// and the reached set. States that lost their covering state become
// entries again and are put back on the waitlist.
func (s *Set) RemoveSubtree(h arg.Handle) arg.Removal {
	r := s.graph.RemoveSubtree(h)
	for _, x := range r.Removed {
		s.Remove(x)
	}
	for _, x := range r.Removed {
		delete(s.precision, x)
		delete(s.order, x)
	}
	for _, x := range r.Uncovered {
		if a, ok := s.graph.Lookup(x); ok {
			s.enter(a)
		}
	}
	return r
}
