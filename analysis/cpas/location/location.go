// Package location tracks the program counter. Its states are CFA nodes and
// a state is a target when its node is an error node.
package location

import (
	"context"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
)

type State struct{ node *cfa.Node }

func StateOf(n *cfa.Node) State { return State{n} }

func (s State) Location() *cfa.Node { return s.node }

func (s State) IsTarget() bool { return s.node.IsError() }

func (s State) String() string { return "@" + s.node.String() }

type CPA struct {
	domain *cpa.FlatLatticeDomain
}

func New() *CPA {
	return &CPA{cpa.NewFlatLatticeDomain()}
}

func (c *CPA) AbstractDomain() cpa.AbstractDomain           { return c.domain }
func (c *CPA) TransferRelation() cpa.TransferRelation       { return transfer{c.domain} }
func (c *CPA) MergeOperator() cpa.MergeOperator             { return cpa.MergeSep{} }
func (c *CPA) StopOperator() cpa.StopOperator               { return cpa.StopSep{D: c.domain} }
func (c *CPA) PrecisionAdjustment() cpa.PrecisionAdjustment { return cpa.StaticPrecisionAdjustment{} }

func (c *CPA) InitialState(loc *cfa.Node) (cpa.AbstractState, error) {
	return State{loc}, nil
}

func (c *CPA) InitialPrecision(loc *cfa.Node) (cpa.Precision, error) {
	return cpa.StaticPrecision(loc)
}

type transfer struct{ d *cpa.FlatLatticeDomain }

func (t transfer) Domain() cpa.AbstractDomain { return t.d }

// Successors follows the edge if it leaves the state's node.
func (t transfer) Successors(_ context.Context, s cpa.AbstractState, _ cpa.Precision, edge *cfa.Edge) ([]cpa.AbstractState, error) {
	if s == t.d.Bottom() {
		return nil, nil
	}
	ls, ok := s.(State)
	if !ok {
		// Top of the flat lattice: every edge is possible.
		return []cpa.AbstractState{State{edge.Succ()}}, nil
	}
	if edge.Pred() != ls.node {
		return nil, nil
	}
	return []cpa.AbstractState{State{edge.Succ()}}, nil
}
