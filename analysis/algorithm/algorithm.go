// Package algorithm implements the CPA algorithm: the worklist exploration
// of a program's abstract state space up to a fixpoint or a target state.
package algorithm

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/reached"
	"github.com/sosy-lab/cpachecker-sub130/utils"
)

type Status int

const (
	Running Status = iota
	// TargetFound means a target state was reached. The waitlist keeps its
	// content so exploration can be resumed.
	TargetFound
	// Exhausted means the waitlist ran empty without reaching a target.
	Exhausted
	// Interrupted means exploration was aborted, either from outside or by
	// an error.
	Interrupted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case TargetFound:
		return "TARGET_FOUND"
	case Exhausted:
		return "EXHAUSTED"
	case Interrupted:
		return "INTERRUPTED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Stats counts the work done by an algorithm across all of its runs.
type Stats struct {
	Popped     int
	Successors int
	Merges     int
	Covered    int
	// Breaks counts successors dropped because precision adjustment asked
	// to stop exploring their branch.
	Breaks  int
	Targets int
}

type Algorithm struct {
	c     cpa.CPA
	Stats Stats

	logged int
}

func New(c cpa.CPA) (*Algorithm, error) {
	if err := cpa.CheckWiring(c); err != nil {
		return nil, err
	}
	return &Algorithm{c: c}, nil
}

// Initialize adds the initial state at entry, with the initial precision,
// to rs.
func (a *Algorithm) Initialize(rs *reached.Set, entry *cfa.Node) (*arg.State, error) {
	s0, err := a.c.InitialState(entry)
	if err != nil {
		return nil, err
	}
	p0, err := a.c.InitialPrecision(entry)
	if err != nil {
		return nil, err
	}
	return rs.AddInitial(s0, p0), nil
}

// Run explores rs until a target is found, the waitlist is exhausted or ctx
// is cancelled. Targets that are still part of rs from an earlier run are
// reported before exploration continues.
func (a *Algorithm) Run(ctx context.Context, rs *reached.Set) (Status, *arg.State, error) {
	if t, ok := pendingTarget(rs); ok {
		return TargetFound, t, nil
	}

	for {
		if err := cpa.CheckInterrupt(ctx); err != nil {
			log.Warn("Exploration interrupted")
			return Interrupted, nil, err
		}

		st, p, ok := rs.Pop()
		if !ok {
			return Exhausted, nil, nil
		}
		a.Stats.Popped++
		log.Debugf("Expanding %v", st)

		if err := a.expand(ctx, rs, st, p); err != nil {
			if errors.Is(err, cpa.ErrInterrupted) {
				log.Warn("Exploration interrupted")
				// Expansion is incomplete.
				if _, ok := rs.ARG().Lookup(st.Handle()); ok {
					rs.ReAdd(st.Handle(), p)
				}
			}
			return Interrupted, nil, err
		}
		a.logProgress(rs)

		if t, ok := pendingTarget(rs); ok {
			return TargetFound, t, nil
		}
	}
}

func pendingTarget(rs *reached.Set) (*arg.State, bool) {
	for _, h := range rs.Targets() {
		if t, ok := rs.ARG().Lookup(h); ok {
			return t, true
		}
	}
	return nil, false
}

func (a *Algorithm) logProgress(rs *reached.Set) {
	if !utils.Opts().LogAI() {
		return
	}
	if n := rs.ARG().Size(); n/100 > a.logged/100 {
		log.Infof("Reached %d states (%d waiting)", n, rs.WaitlistLen())
		a.logged = n
	}
}

// expand computes the successors of st along every edge leaving its
// location and records them in rs.
func (a *Algorithm) expand(ctx context.Context, rs *reached.Set, st *arg.State, p cpa.Precision) error {
	loc := st.Location()
	if loc == nil {
		return cpa.NewAnalysisError("state %v has no location", st)
	}

	// The expanded state may itself be replaced by a merge.
	parent := st.Handle()
	for _, e := range loc.LeavingEdges() {
		if err := cpa.CheckInterrupt(ctx); err != nil {
			return err
		}

		succs, err := a.c.TransferRelation().Successors(ctx, st.Wrapped(), p, e)
		if err != nil {
			return err
		}
		for _, s := range succs {
			a.Stats.Successors++

			res, err := a.c.PrecisionAdjustment().Prec(ctx, s, p, rs, s)
			if err != nil {
				return err
			}
			if res.Action == cpa.Break {
				log.Debugf("Dropping %v after %v", res.State, e)
				a.Stats.Breaks++
				continue
			}
			if parent, err = a.insert(rs, parent, res.State, res.Precision, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// insert records the successor s of parent. It returns the handle of the
// parent, which changes if the parent was merged with s.
func (a *Algorithm) insert(rs *reached.Set, parent arg.Handle, s cpa.AbstractState, p cpa.Precision, e *cfa.Edge) (arg.Handle, error) {
	if cpa.IsTarget(s) {
		t := rs.Add(parent, s, p, e)
		a.Stats.Targets++
		log.Debugf("Target %v reached", t)
		return parent, nil
	}

	loc, ok := cpa.ExtractLocation(s)
	if !ok {
		return parent, cpa.NewAnalysisError("successor %v of %v has no location", s, parent)
	}

	// Handles of merged states that parent is already linked to.
	linked := map[arg.Handle]bool{}
	for _, r := range rs.ReachedAt(loc) {
		m, err := a.c.MergeOperator().Merge(s, r.Wrapped(), p)
		if err != nil {
			return parent, err
		}
		if cpa.Identical(m, r.Wrapped()) || cpa.Identical(m, s) {
			continue
		}

		a.Stats.Merges++
		wasParent := r.Handle() == parent
		mr := rs.ReplaceMerged(r.Handle(), m, p)
		if wasParent {
			parent = mr.Handle()
		}
		rs.ARG().Link(parent, mr.Handle(), e)
		linked[mr.Handle()] = true
		log.Debugf("Merged %v into %v", s, mr)
	}

	candidates := rs.ReachedAt(loc)
	states := make([]cpa.AbstractState, len(candidates))
	for i, r := range candidates {
		states[i] = r.Wrapped()
	}

	switch stop := a.c.StopOperator().(type) {
	case cpa.CoveringStop:
		idx, err := stop.CoveredBy(s, states, p)
		if err != nil {
			return parent, err
		}
		if idx >= 0 {
			a.Stats.Covered++
			if by := candidates[idx].Handle(); !linked[by] {
				rs.AddCovered(parent, s, p, e, by)
			}
			return parent, nil
		}
	default:
		covered, err := stop.Stop(s, states, p)
		if err != nil {
			return parent, err
		}
		if covered {
			a.Stats.Covered++
			return parent, nil
		}
	}

	rs.Add(parent, s, p, e)
	return parent, nil
}
