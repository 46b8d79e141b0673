// Package composite implements the product of several CPAs. Every operator
// works component-wise, and transfer successors are strengthened with the
// successors of the other components.
package composite

import (
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
)

// State is a tuple of component states.
type State struct {
	components *immutable.List[cpa.AbstractState]
}

func NewState(components ...cpa.AbstractState) *State {
	b := immutable.NewListBuilder[cpa.AbstractState]()
	for _, c := range components {
		b.Append(c)
	}
	return &State{b.List()}
}

func (s *State) Len() int { return s.components.Len() }

func (s *State) Get(i int) cpa.AbstractState { return s.components.Get(i) }

// With returns a copy of s with the i'th component replaced.
func (s *State) With(i int, c cpa.AbstractState) *State {
	return &State{s.components.Set(i, c)}
}

func (s *State) Components() []cpa.AbstractState {
	res := make([]cpa.AbstractState, 0, s.Len())
	for it := s.components.Iterator(); !it.Done(); {
		_, c := it.Next()
		res = append(res, c)
	}
	return res
}

// IsTarget holds if any component denotes a property violation.
func (s *State) IsTarget() bool {
	for it := s.components.Iterator(); !it.Done(); {
		if _, c := it.Next(); cpa.IsTarget(c) {
			return true
		}
	}
	return false
}

// Location is the location of the first component that has one.
func (s *State) Location() *cfa.Node {
	for it := s.components.Iterator(); !it.Done(); {
		_, c := it.Next()
		if loc, ok := cpa.ExtractLocation(c); ok {
			return loc
		}
	}
	return nil
}

func (s *State) String() string {
	parts := make([]string, 0, s.Len())
	for _, c := range s.Components() {
		parts = append(parts, c.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Precision is a tuple of component precisions.
type Precision struct {
	components *immutable.List[cpa.Precision]
}

func NewPrecision(components ...cpa.Precision) *Precision {
	b := immutable.NewListBuilder[cpa.Precision]()
	for _, c := range components {
		b.Append(c)
	}
	return &Precision{b.List()}
}

func (p *Precision) Len() int { return p.components.Len() }

func (p *Precision) Get(i int) cpa.Precision { return p.components.Get(i) }

func (p *Precision) With(i int, c cpa.Precision) *Precision {
	return &Precision{p.components.Set(i, c)}
}

// Refine passes the increment to every refinable component.
func (p *Precision) Refine(loc *cfa.Node, increment any) (cpa.Precision, bool) {
	res, changed := p, false
	for i := 0; i < p.Len(); i++ {
		r, ok := p.Get(i).(cpa.RefinablePrecision)
		if !ok {
			continue
		}
		if refined, grew := r.Refine(loc, increment); grew {
			res = res.With(i, refined)
			changed = true
		}
	}
	return res, changed
}

func (p *Precision) String() string {
	parts := make([]string, 0, p.Len())
	for i := 0; i < p.Len(); i++ {
		parts = append(parts, p.Get(i).String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
