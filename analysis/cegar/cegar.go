// Package cegar drives counterexample-guided abstraction refinement: it
// alternates exploration with feasibility checks of the counterexamples
// found, and refines the precision whenever a counterexample is spurious.
package cegar

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sosy-lab/cpachecker-sub130/analysis/algorithm"
	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/reached"
)

type Verdict int

const (
	Unknown Verdict = iota
	Safe
	Unsafe
)

func (v Verdict) String() string {
	switch v {
	case Safe:
		return "SAFE"
	case Unsafe:
		return "UNSAFE"
	}
	return "UNKNOWN"
}

// Increment is a piece of precision to add at a location. Its payload is
// interpreted by the precisions that understand it.
type Increment struct {
	Location *cfa.Node
	Delta    any
}

// Hint tells how to refine the precision so that a spurious counterexample
// is excluded.
type Hint []Increment

type FeasibilityResult struct {
	Feasible bool
	// Hint is set for infeasible paths.
	Hint Hint
	// Model is a concrete evaluation of the variables along a feasible path.
	Model map[string]bool
}

// Oracle decides whether a counterexample corresponds to a real execution.
type Oracle interface {
	CheckFeasibility(ctx context.Context, path arg.Path) (FeasibilityResult, error)
}

// RefinementFailedError is reported when a hint does not make the precision
// grow anywhere on the counterexample, so the same counterexample would be
// found again.
type RefinementFailedError struct {
	Locations []*cfa.Node
	Path      arg.Path
}

func (e *RefinementFailedError) Error() string {
	if len(e.Locations) == 0 {
		return "refinement failed: empty hint"
	}
	names := make([]string, len(e.Locations))
	for i, l := range e.Locations {
		names[i] = l.String()
	}
	return fmt.Sprintf("refinement failed: no progress at %s", strings.Join(names, ", "))
}

// Round records one feasibility check.
type Round struct {
	Target   arg.Handle
	Feasible bool
	// The following are set for refined rounds.
	Pivot    arg.Handle
	Location *cfa.Node
	Before   cpa.Precision
	After    cpa.Precision
	Removed  int
}

type Result struct {
	Verdict Verdict
	// Reason explains an UNKNOWN verdict.
	Reason         string
	Counterexample *arg.Path
	Model          map[string]bool
	// Analyses counts the exploration phases.
	Analyses    int
	Refinements int
	Rounds      []Round
}

type Loop struct {
	alg    *algorithm.Algorithm
	oracle Oracle
	// MaxRefinements bounds the number of refinement rounds.
	MaxRefinements int
}

func New(alg *algorithm.Algorithm, oracle Oracle, maxRefinements int) *Loop {
	return &Loop{alg: alg, oracle: oracle, MaxRefinements: maxRefinements}
}

// Run explores rs until the property is proven, a feasible counterexample
// is found, or refinement gives up. Errors leave the verdict UNKNOWN.
func (l *Loop) Run(ctx context.Context, rs *reached.Set) (Result, error) {
	var res Result
	for {
		status, target, err := l.alg.Run(ctx, rs)
		res.Analyses++
		if err != nil {
			return res, err
		}
		if status == algorithm.Exhausted {
			res.Verdict = Safe
			return res, nil
		}

		path, err := rs.ARG().PathTo(target.Handle())
		if err != nil {
			return res, err
		}
		log.Debugf("Checking counterexample of length %d to %v", path.Len(), target)

		fr, err := l.oracle.CheckFeasibility(ctx, path)
		if err != nil {
			return res, err
		}
		round := Round{Target: target.Handle(), Feasible: fr.Feasible}
		if fr.Feasible {
			res.Rounds = append(res.Rounds, round)
			res.Verdict = Unsafe
			res.Counterexample = &path
			res.Model = fr.Model
			return res, nil
		}

		if res.Refinements >= l.MaxRefinements {
			res.Rounds = append(res.Rounds, round)
			res.Reason = fmt.Sprintf("refinement limit of %d reached", l.MaxRefinements)
			return res, nil
		}

		if err := l.refine(rs, path, fr.Hint, &round); err != nil {
			return res, err
		}
		res.Refinements++
		res.Rounds = append(res.Rounds, round)
		log.Infof("Refinement %d at %v: %v", res.Refinements, round.Location, round.After)
	}
}

// refineAll applies every increment of hint to p. grown reports the
// locations where p strictly grew.
func refineAll(p cpa.Precision, hint Hint) (cpa.Precision, map[*cfa.Node]bool) {
	grown := map[*cfa.Node]bool{}
	for _, inc := range hint {
		rp, ok := p.(cpa.RefinablePrecision)
		if !ok {
			break
		}
		np, changed := rp.Refine(inc.Location, inc.Delta)
		if changed {
			grown[inc.Location] = true
			p = np
		}
	}
	return p, grown
}

// refine finds the first state of path whose precision grows at its own
// location, removes the subtree below it and re-explores from its parents
// with the refined precision.
func (l *Loop) refine(rs *reached.Set, path arg.Path, hint Hint, round *Round) error {
	locs := path.Locations()

	pivot := -1
	var after cpa.Precision
	for i, h := range path.Handles {
		p := rs.Precision(h)
		if p == nil {
			continue
		}
		np, grown := refineAll(p, hint)
		if grown[locs[i]] {
			pivot, after = i, np
			break
		}
	}
	if pivot < 0 {
		return &RefinementFailedError{Locations: hintLocations(hint), Path: path}
	}

	h := path.Handles[pivot]
	round.Pivot = h
	round.Location = locs[pivot]
	round.Before = rs.Precision(h)
	round.After = after

	removal := rs.RemoveSubtree(h)
	round.Removed = len(removal.Removed)
	for _, p := range removal.Parents {
		np, _ := refineAll(rs.Precision(p), hint)
		rs.ReAdd(p, np)
	}

	if pivot == 0 {
		// Exploration restarts from the initial state.
		rs.AddInitial(path.States[0], after)
	}
	return nil
}

func hintLocations(hint Hint) []*cfa.Node {
	seen := map[*cfa.Node]bool{}
	var res []*cfa.Node
	for _, inc := range hint {
		if !seen[inc.Location] {
			seen[inc.Location] = true
			res = append(res, inc.Location)
		}
	}
	return res
}
