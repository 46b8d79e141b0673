package cpa

import (
	"context"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
)

type flatElement string

func (e flatElement) String() string { return string(e) }

const (
	flatTop    flatElement = "⊤"
	flatBottom flatElement = "⊥"
)

// FlatLatticeDomain orders states only against a dedicated top and bottom:
// distinct ordinary states are incomparable and join to top.
type FlatLatticeDomain struct {
	// Distinct domains must have distinct addresses.
	_ byte
}

func NewFlatLatticeDomain() *FlatLatticeDomain { return &FlatLatticeDomain{} }

func (*FlatLatticeDomain) Top() AbstractState    { return flatTop }
func (*FlatLatticeDomain) Bottom() AbstractState { return flatBottom }

func (*FlatLatticeDomain) IsLessOrEqual(a, b AbstractState) (bool, error) {
	return a == flatBottom || b == flatTop || Equal(a, b), nil
}

func (d *FlatLatticeDomain) Join(a, b AbstractState) (AbstractState, error) {
	switch {
	case a == flatBottom || Equal(a, b):
		return b, nil
	case b == flatBottom:
		return a, nil
	}
	return flatTop, nil
}

// MergeSep never combines states.
type MergeSep struct{}

func (MergeSep) Merge(newState, _ AbstractState, _ Precision) (AbstractState, error) {
	return newState, nil
}

// MergeJoin replaces the reached state by the join of both states.
type MergeJoin struct {
	D AbstractDomain
}

func (m MergeJoin) Domain() AbstractDomain { return m.D }

func (m MergeJoin) Merge(newState, reached AbstractState, _ Precision) (AbstractState, error) {
	j, err := m.D.Join(newState, reached)
	if err != nil {
		return nil, err
	}
	if Identical(j, reached) {
		return reached, nil
	}
	// The join collapsed onto reached; report it unchanged.
	if leq, err := m.D.IsLessOrEqual(j, reached); err != nil || leq {
		return reached, err
	}
	return j, nil
}

// StopSep covers a state if it is less or equal to one of the reached states.
type StopSep struct {
	D AbstractDomain
}

func (s StopSep) Domain() AbstractDomain { return s.D }

func (s StopSep) Stop(state AbstractState, reached []AbstractState, p Precision) (bool, error) {
	i, err := s.CoveredBy(state, reached, p)
	return i >= 0, err
}

func (s StopSep) CoveredBy(state AbstractState, reached []AbstractState, _ Precision) (int, error) {
	for i, r := range reached {
		leq, err := s.D.IsLessOrEqual(state, r)
		if err != nil {
			return -1, err
		}
		if leq {
			return i, nil
		}
	}
	return -1, nil
}

// StopNever explores every state.
type StopNever struct{}

func (StopNever) Stop(AbstractState, []AbstractState, Precision) (bool, error) { return false, nil }

// StopAlways discards every state after the initial ones.
type StopAlways struct{}

func (StopAlways) Stop(AbstractState, []AbstractState, Precision) (bool, error) { return true, nil }

// StaticPrecisionAdjustment leaves states and precisions untouched.
type StaticPrecisionAdjustment struct{}

func (StaticPrecisionAdjustment) Prec(_ context.Context, s AbstractState, p Precision, _ ReachedView, _ AbstractState) (PrecisionAdjustmentResult, error) {
	return PrecisionAdjustmentResult{s, p, Continue}, nil
}

// SingletonPrecision is the only precision of analyses without abstraction.
type SingletonPrecision struct{}

func (SingletonPrecision) String() string { return "no precision" }

// Precision of analyses that never abstract states.
func StaticPrecision(*cfa.Node) (Precision, error) { return SingletonPrecision{}, nil }
