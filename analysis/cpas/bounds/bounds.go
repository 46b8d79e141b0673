// Package bounds counts loop-head visits along each path and cuts off
// exploration once a loop has been unrolled more often than allowed.
package bounds

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/utils"
)

type State struct {
	counts *immutable.Map[*cfa.Node, int]
}

func newState() *State {
	return &State{immutable.NewMap[*cfa.Node, int](utils.HashableHasher[*cfa.Node]())}
}

// Count is the number of times the path visited a loop head.
func (s *State) Count(head *cfa.Node) int {
	n, _ := s.counts.Get(head)
	return n
}

// Max is the largest count of any loop head.
func (s *State) Max() (res int) {
	for it := s.counts.Iterator(); !it.Done(); {
		if _, n, _ := it.Next(); n > res {
			res = n
		}
	}
	return
}

func (s *State) visit(head *cfa.Node) *State {
	return &State{s.counts.Set(head, s.Count(head)+1)}
}

func (s *State) Equal(o cpa.AbstractState) bool {
	os, ok := o.(*State)
	if !ok || s.counts.Len() != os.counts.Len() {
		return false
	}
	for it := s.counts.Iterator(); !it.Done(); {
		head, n, _ := it.Next()
		if m, found := os.counts.Get(head); !found || m != n {
			return false
		}
	}
	return true
}

func (s *State) String() string {
	parts := make([]string, 0, s.counts.Len())
	for it := s.counts.Iterator(); !it.Done(); {
		head, n, _ := it.Next()
		parts = append(parts, fmt.Sprintf("%v×%d", head, n))
	}
	sort.Strings(parts)
	return "loops{" + strings.Join(parts, ", ") + "}"
}

// CPA bounds loop unrolling. The domain is flat: states with different
// counters are incomparable.
type CPA struct {
	bound  int
	domain *cpa.FlatLatticeDomain
}

// New allows every loop head to be visited at most k times per path.
func New(k int) *CPA {
	return &CPA{k, cpa.NewFlatLatticeDomain()}
}

func (c *CPA) Bound() int { return c.bound }

func (c *CPA) AbstractDomain() cpa.AbstractDomain           { return c.domain }
func (c *CPA) TransferRelation() cpa.TransferRelation       { return transfer{} }
func (c *CPA) MergeOperator() cpa.MergeOperator             { return cpa.MergeSep{} }
func (c *CPA) StopOperator() cpa.StopOperator               { return cpa.StopSep{D: c.domain} }
func (c *CPA) PrecisionAdjustment() cpa.PrecisionAdjustment { return cutoff{c.bound} }

func (c *CPA) InitialState(*cfa.Node) (cpa.AbstractState, error) { return newState(), nil }

func (c *CPA) InitialPrecision(loc *cfa.Node) (cpa.Precision, error) {
	return cpa.StaticPrecision(loc)
}

type transfer struct{}

// Successors keeps the counters; they are advanced during strengthening once
// the successor location is known.
func (transfer) Successors(_ context.Context, s cpa.AbstractState, _ cpa.Precision, _ *cfa.Edge) ([]cpa.AbstractState, error) {
	if _, ok := s.(*State); !ok {
		return nil, nil
	}
	return []cpa.AbstractState{s}, nil
}

func (transfer) Strengthen(_ context.Context, s cpa.AbstractState, others []cpa.AbstractState, _ *cfa.Edge, _ cpa.Precision) ([]cpa.AbstractState, error) {
	bs := s.(*State)
	for _, o := range others {
		if loc, ok := cpa.ExtractLocation(o); ok {
			if loc.IsLoopHead() {
				return []cpa.AbstractState{bs.visit(loc)}, nil
			}
			break
		}
	}
	return []cpa.AbstractState{bs}, nil
}

type cutoff struct{ bound int }

func (c cutoff) Prec(_ context.Context, s cpa.AbstractState, p cpa.Precision, _ cpa.ReachedView, _ cpa.AbstractState) (cpa.PrecisionAdjustmentResult, error) {
	action := cpa.Continue
	if s.(*State).Max() > c.bound {
		action = cpa.Break
	}
	return cpa.PrecisionAdjustmentResult{State: s, Precision: p, Action: action}, nil
}
