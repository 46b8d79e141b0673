package value

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/expr"
)

type CPA struct {
	domain   *domain
	join     bool
	trackAll bool
}

type Option func(*CPA)

// WithMergeJoin merges states at the same location by joining them instead of
// keeping them separate.
func WithMergeJoin() Option { return func(c *CPA) { c.join = true } }

// TrackingAll disables abstraction: every variable is tracked everywhere.
func TrackingAll() Option { return func(c *CPA) { c.trackAll = true } }

func New(opts ...Option) *CPA {
	c := &CPA{domain: &domain{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CPA) AbstractDomain() cpa.AbstractDomain     { return c.domain }
func (c *CPA) TransferRelation() cpa.TransferRelation { return transfer{} }
func (c *CPA) StopOperator() cpa.StopOperator         { return cpa.StopSep{D: c.domain} }

func (c *CPA) MergeOperator() cpa.MergeOperator {
	if c.join {
		return cpa.MergeJoin{D: c.domain}
	}
	return cpa.MergeSep{}
}

func (c *CPA) PrecisionAdjustment() cpa.PrecisionAdjustment { return abstraction{} }

func (c *CPA) InitialState(*cfa.Node) (cpa.AbstractState, error) { return Top(), nil }

func (c *CPA) InitialPrecision(*cfa.Node) (cpa.Precision, error) {
	if c.trackAll {
		return FullPrecision(), nil
	}
	return EmptyPrecision(), nil
}

type domain struct {
	// Distinct domains must have distinct addresses.
	_ byte
}

func (*domain) Top() cpa.AbstractState    { return Top() }
func (*domain) Bottom() cpa.AbstractState { return bottom }

func cast(s cpa.AbstractState) *State {
	vs, ok := s.(*State)
	if !ok {
		panic(fmt.Errorf("value analysis given %T %v", s, s))
	}
	return vs
}

// IsLessOrEqual holds if a binds every variable bound by b to the same value.
func (*domain) IsLessOrEqual(a, b cpa.AbstractState) (bool, error) {
	va, vb := cast(a), cast(b)
	switch {
	case va.bottom:
		return true, nil
	case vb.bottom:
		return false, nil
	case vb.Len() > va.Len():
		return false, nil
	}
	return subsumes(va, vb), nil
}

// Join keeps the bindings on which both states agree. b is returned as is if
// it is already the join.
func (*domain) Join(a, b cpa.AbstractState) (cpa.AbstractState, error) {
	va, vb := cast(a), cast(b)
	switch {
	case va.bottom:
		return vb, nil
	case vb.bottom:
		return va, nil
	}

	res := vb
	vb.ForEach(func(k string, v bool) {
		if av, ok := va.Value(k); !ok || av != v {
			res = res.Forget(k)
		}
	})
	return res, nil
}

type transfer struct{}

func (transfer) Successors(_ context.Context, s cpa.AbstractState, _ cpa.Precision, edge *cfa.Edge) ([]cpa.AbstractState, error) {
	vs := cast(s)
	if vs.bottom {
		return nil, nil
	}

	switch op := edge.Op().(type) {
	case cfa.Assume:
		v, known := op.Cond.Eval(vs.Env())
		if known {
			if !v {
				return nil, nil
			}
			return []cpa.AbstractState{vs}, nil
		}
		res := vs
		expr.Implied(op.Cond, true, func(name string, v bool) {
			res = res.Bind(name, v)
		})
		return []cpa.AbstractState{res}, nil

	case cfa.Assign:
		if v, known := op.Value.Eval(vs.Env()); known {
			return []cpa.AbstractState{vs.Bind(op.Var, v)}, nil
		}
		return []cpa.AbstractState{vs.Forget(op.Var)}, nil

	case cfa.Havoc:
		return []cpa.AbstractState{vs.Forget(op.Var)}, nil

	case cfa.Skip:
		return []cpa.AbstractState{vs}, nil
	}

	log.Debugf("value analysis: treating %T on %v as a no-op", edge.Op(), edge)
	return []cpa.AbstractState{vs}, nil
}

// abstraction forgets the variables the precision does not track at the
// state's location.
type abstraction struct{}

func (abstraction) Prec(_ context.Context, s cpa.AbstractState, p cpa.Precision, _ cpa.ReachedView, full cpa.AbstractState) (cpa.PrecisionAdjustmentResult, error) {
	vs, vp := cast(s), p.(*Precision)
	loc, ok := cpa.ExtractLocation(full)
	if !ok || vp.all {
		return cpa.PrecisionAdjustmentResult{State: s, Precision: p, Action: cpa.Continue}, nil
	}

	res := vs
	vs.ForEach(func(name string, _ bool) {
		if !vp.Tracks(loc, name) {
			res = res.Forget(name)
		}
	})
	return cpa.PrecisionAdjustmentResult{State: res, Precision: p, Action: cpa.Continue}, nil
}
