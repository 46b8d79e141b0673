package composite

import (
	"context"
	"fmt"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
)

// CPA is the product of its components. It implements cpa.CPA, and its
// domain, transfer relation and operators all work on *State and
// *Precision.
type CPA struct {
	components []cpa.CPA
	domain     *domain
}

// New builds the product of the given analyses. Construction fails if the
// list is empty or if some component's operators are wired to a domain other
// than the component's own.
func New(components ...cpa.CPA) (*CPA, error) {
	if len(components) == 0 {
		return nil, cpa.NewAnalysisError("composite analysis without components")
	}
	for i, c := range components {
		if err := cpa.CheckWiring(c); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
	}
	res := &CPA{components: components}
	res.domain = &domain{res}
	return res, nil
}

func (c *CPA) Components() []cpa.CPA { return c.components }

func (c *CPA) AbstractDomain() cpa.AbstractDomain           { return c.domain }
func (c *CPA) TransferRelation() cpa.TransferRelation       { return transfer{c} }
func (c *CPA) MergeOperator() cpa.MergeOperator             { return merge{c} }
func (c *CPA) StopOperator() cpa.StopOperator               { return stop{c} }
func (c *CPA) PrecisionAdjustment() cpa.PrecisionAdjustment { return precAdjust{c} }

func (c *CPA) InitialState(loc *cfa.Node) (cpa.AbstractState, error) {
	states := make([]cpa.AbstractState, len(c.components))
	for i, comp := range c.components {
		s, err := comp.InitialState(loc)
		if err != nil {
			return nil, err
		}
		states[i] = s
	}
	return NewState(states...), nil
}

func (c *CPA) InitialPrecision(loc *cfa.Node) (cpa.Precision, error) {
	precs := make([]cpa.Precision, len(c.components))
	for i, comp := range c.components {
		p, err := comp.InitialPrecision(loc)
		if err != nil {
			return nil, err
		}
		precs[i] = p
	}
	return NewPrecision(precs...), nil
}

func (c *CPA) unwrap(s cpa.AbstractState) *State {
	cs, ok := s.(*State)
	if !ok || cs.Len() != len(c.components) {
		panic(fmt.Errorf("composite analysis of %d components given %T %v", len(c.components), s, s))
	}
	return cs
}

func (c *CPA) unwrapPrec(p cpa.Precision) *Precision {
	cp, ok := p.(*Precision)
	if !ok || cp.Len() != len(c.components) {
		panic(fmt.Errorf("composite analysis of %d components given precision %T %v", len(c.components), p, p))
	}
	return cp
}

type domain struct{ c *CPA }

// IsLessOrEqual is the conjunction of the component orders.
func (d *domain) IsLessOrEqual(a, b cpa.AbstractState) (bool, error) {
	ca, cb := d.c.unwrap(a), d.c.unwrap(b)
	for i, comp := range d.c.components {
		leq, err := comp.AbstractDomain().IsLessOrEqual(ca.Get(i), cb.Get(i))
		if err != nil || !leq {
			return false, err
		}
	}
	return true, nil
}

func (d *domain) Join(a, b cpa.AbstractState) (cpa.AbstractState, error) {
	ca, cb := d.c.unwrap(a), d.c.unwrap(b)
	res := ca
	for i, comp := range d.c.components {
		j, err := comp.AbstractDomain().Join(ca.Get(i), cb.Get(i))
		if err != nil {
			return nil, err
		}
		res = res.With(i, j)
	}
	return res, nil
}

func (d *domain) Top() cpa.AbstractState {
	states := make([]cpa.AbstractState, len(d.c.components))
	for i, comp := range d.c.components {
		states[i] = comp.AbstractDomain().Top()
	}
	return NewState(states...)
}

func (d *domain) Bottom() cpa.AbstractState {
	states := make([]cpa.AbstractState, len(d.c.components))
	for i, comp := range d.c.components {
		states[i] = comp.AbstractDomain().Bottom()
	}
	return NewState(states...)
}

type transfer struct{ c *CPA }

// Successors forms the cartesian product of the component successors and
// strengthens every combination component by component. Any component
// without successors makes the edge infeasible.
func (t transfer) Successors(ctx context.Context, s cpa.AbstractState, p cpa.Precision, edge *cfa.Edge) ([]cpa.AbstractState, error) {
	cs, cp := t.c.unwrap(s), t.c.unwrapPrec(p)

	perComponent := make([][]cpa.AbstractState, len(t.c.components))
	for i, comp := range t.c.components {
		if err := cpa.CheckInterrupt(ctx); err != nil {
			return nil, err
		}
		succs, err := comp.TransferRelation().Successors(ctx, cs.Get(i), cp.Get(i), edge)
		if err != nil {
			return nil, err
		}
		if len(succs) == 0 {
			return nil, nil
		}
		perComponent[i] = succs
	}

	var res []cpa.AbstractState
	for _, combination := range product(perComponent) {
		strengthened, err := t.strengthen(ctx, combination, cp, edge)
		if err != nil {
			return nil, err
		}
		for _, states := range strengthened {
			res = append(res, NewState(states...))
		}
	}
	return res, nil
}

func (t transfer) strengthen(ctx context.Context, states []cpa.AbstractState, cp *Precision, edge *cfa.Edge) ([][]cpa.AbstractState, error) {
	results := [][]cpa.AbstractState{states}
	for i, comp := range t.c.components {
		st, ok := comp.TransferRelation().(cpa.Strengthener)
		if !ok {
			continue
		}

		var next [][]cpa.AbstractState
		for _, r := range results {
			ss, err := st.Strengthen(ctx, r[i], r, edge, cp.Get(i))
			if err != nil {
				return nil, err
			}
			for _, s := range ss {
				cpy := append([]cpa.AbstractState(nil), r...)
				cpy[i] = s
				next = append(next, cpy)
			}
		}
		if results = next; len(results) == 0 {
			break
		}
	}
	return results, nil
}

func product(lists [][]cpa.AbstractState) [][]cpa.AbstractState {
	res := [][]cpa.AbstractState{{}}
	for _, l := range lists {
		var next [][]cpa.AbstractState
		for _, prefix := range res {
			for _, s := range l {
				next = append(next, append(append([]cpa.AbstractState(nil), prefix...), s))
			}
		}
		res = next
	}
	return res
}

type merge struct{ c *CPA }

// Merge merges component-wise. If some component keeps the states separate
// while they differ in that component, the composite states stay separate.
// If no component changed its reached state, reached itself is returned.
func (m merge) Merge(newState, reached cpa.AbstractState, p cpa.Precision) (cpa.AbstractState, error) {
	cn, cr, cp := m.c.unwrap(newState), m.c.unwrap(reached), m.c.unwrapPrec(p)

	res, changed := cr, false
	for i, comp := range m.c.components {
		ni, ri := cn.Get(i), cr.Get(i)
		mi, err := comp.MergeOperator().Merge(ni, ri, cp.Get(i))
		if err != nil {
			return nil, err
		}

		switch {
		case cpa.Identical(mi, ri):
		case cpa.Identical(mi, ni):
			// The component refuses to merge. That only matters if the two
			// states actually differ.
			if !cpa.Equal(ni, ri) {
				return newState, nil
			}
		default:
			res = res.With(i, mi)
			changed = true
		}
	}

	if !changed {
		return reached, nil
	}
	return res, nil
}

type stop struct{ c *CPA }

func (s stop) Stop(state cpa.AbstractState, reached []cpa.AbstractState, p cpa.Precision) (bool, error) {
	i, err := s.CoveredBy(state, reached, p)
	return i >= 0, err
}

// CoveredBy finds a reached state that covers state in every component, as
// judged by each component's own stop operator.
func (s stop) CoveredBy(state cpa.AbstractState, reached []cpa.AbstractState, p cpa.Precision) (int, error) {
	cs, cp := s.c.unwrap(state), s.c.unwrapPrec(p)

outer:
	for idx, r := range reached {
		cr := s.c.unwrap(r)
		for i, comp := range s.c.components {
			covered, err := comp.StopOperator().Stop(cs.Get(i), []cpa.AbstractState{cr.Get(i)}, cp.Get(i))
			if err != nil {
				return -1, err
			}
			if !covered {
				continue outer
			}
		}
		return idx, nil
	}
	return -1, nil
}

type precAdjust struct{ c *CPA }

// Prec adjusts every component in order. The first component to request
// Break ends the adjustment.
func (pa precAdjust) Prec(ctx context.Context, s cpa.AbstractState, p cpa.Precision, reached cpa.ReachedView, _ cpa.AbstractState) (cpa.PrecisionAdjustmentResult, error) {
	cs, cp := pa.c.unwrap(s), pa.c.unwrapPrec(p)
	resState, resPrec := cs, cp

	for i, comp := range pa.c.components {
		view := projection{reached, pa.c, i}
		r, err := comp.PrecisionAdjustment().Prec(ctx, cs.Get(i), cp.Get(i), view, s)
		if err != nil {
			return cpa.PrecisionAdjustmentResult{}, err
		}
		if !cpa.Identical(r.State, cs.Get(i)) {
			resState = resState.With(i, r.State)
		}
		if !cpa.Identical(r.Precision, cp.Get(i)) {
			resPrec = resPrec.With(i, r.Precision)
		}
		if r.Action == cpa.Break {
			return cpa.PrecisionAdjustmentResult{State: resState, Precision: resPrec, Action: cpa.Break}, nil
		}
	}

	return cpa.PrecisionAdjustmentResult{State: resState, Precision: resPrec, Action: cpa.Continue}, nil
}

// projection presents the reached set to a single component.
type projection struct {
	reached cpa.ReachedView
	c       *CPA
	index   int
}

func (v projection) Size() int { return v.reached.Size() }

func (v projection) StatesAt(loc *cfa.Node) []cpa.AbstractState {
	states := v.reached.StatesAt(loc)
	res := make([]cpa.AbstractState, len(states))
	for i, s := range states {
		res[i] = v.c.unwrap(s).Get(v.index)
	}
	return res
}
