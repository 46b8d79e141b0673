// Package oracle checks counterexample paths for feasibility with a SAT
// solver. A path is encoded in static single assignment form as a circuit;
// every edge is guarded by an activation literal so that an unsatisfiable
// path yields the set of edges responsible for it.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"sort"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	log "github.com/sirupsen/logrus"

	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cegar"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/expr"
	"github.com/sosy-lab/cpachecker-sub130/analysis/varclass"
)

var errUndetermined = errors.New("satisfiability undetermined")

// SAT is a feasibility oracle for paths over boolean programs.
type SAT struct {
	classes *varclass.Partition
}

// New creates an oracle. If classes is not nil, refinement hints are closed
// under the variable classes.
func New(classes *varclass.Partition) *SAT {
	return &SAT{classes}
}

// encoder tracks the current version of every variable along a path.
type encoder struct {
	c       *logic.C
	current map[string]z.Lit
	// First version of every variable, in order of appearance.
	initial map[string]z.Lit
	names   []string
}

func newEncoder() *encoder {
	return &encoder{
		c:       logic.NewC(),
		current: map[string]z.Lit{},
		initial: map[string]z.Lit{},
	}
}

func (enc *encoder) variable(name string) z.Lit {
	if m, ok := enc.current[name]; ok {
		return m
	}
	m := enc.c.Lit()
	enc.current[name] = m
	enc.initial[name] = m
	enc.names = append(enc.names, name)
	return m
}

func (enc *encoder) xor(a, b z.Lit) z.Lit {
	return enc.c.Or(enc.c.And(a, b.Not()), enc.c.And(a.Not(), b))
}

func (enc *encoder) expr(e expr.Expr) z.Lit {
	switch e := e.(type) {
	case expr.Var:
		return enc.variable(e.Name)
	case expr.Const:
		if e.Value {
			return enc.c.T
		}
		return enc.c.F
	case expr.Not:
		return enc.expr(e.X).Not()
	case expr.Binary:
		x, y := enc.expr(e.X), enc.expr(e.Y)
		switch e.Op {
		case token.LAND:
			return enc.c.And(x, y)
		case token.LOR:
			return enc.c.Or(x, y)
		case token.EQL:
			return enc.xor(x, y).Not()
		case token.NEQ:
			return enc.xor(x, y)
		}
	}
	panic(fmt.Errorf("%w: cannot encode %v", expr.ErrUnsupported, e))
}

// edge encodes the effect of one statement and returns its constraint.
func (enc *encoder) edge(e *cfa.Edge) z.Lit {
	if e == nil {
		return enc.c.T
	}
	switch op := e.Op().(type) {
	case cfa.Assume:
		return enc.expr(op.Cond)
	case cfa.Assign:
		v := enc.expr(op.Value)
		enc.variable(op.Var)
		next := enc.c.Lit()
		enc.current[op.Var] = next
		return enc.xor(next, v).Not()
	case cfa.Havoc:
		enc.variable(op.Var)
		enc.current[op.Var] = enc.c.Lit()
	}
	return enc.c.T
}

const pollInterval = 10 * time.Millisecond

// solve runs the solver in the background and stops it once ctx is done.
func solve(ctx context.Context, g *gini.Gini) (int, error) {
	s := g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if res, done := s.Test(); done {
			return res, nil
		}
		select {
		case <-ctx.Done():
			s.Stop()
			return 0, cpa.CheckInterrupt(ctx)
		case <-ticker.C:
		}
	}
}

// CheckFeasibility decides whether some initial valuation of the variables
// drives execution along path.
func (o *SAT) CheckFeasibility(ctx context.Context, path arg.Path) (cegar.FeasibilityResult, error) {
	if err := cpa.CheckInterrupt(ctx); err != nil {
		return cegar.FeasibilityResult{}, err
	}

	enc := newEncoder()
	constraints := make([]z.Lit, len(path.Edges))
	acts := make([]z.Lit, len(path.Edges))
	edgeOf := map[z.Lit]int{}
	for i, e := range path.Edges {
		constraints[i] = enc.edge(e)
		acts[i] = enc.c.Lit()
		edgeOf[acts[i]] = i
	}

	g := gini.New()
	enc.c.ToCnf(g)
	g.Add(enc.c.T)
	g.Add(z.LitNull)
	for i, act := range acts {
		g.Add(act.Not())
		g.Add(constraints[i])
		g.Add(z.LitNull)
	}
	g.Assume(acts...)

	res, err := solve(ctx, g)
	if err != nil {
		return cegar.FeasibilityResult{}, err
	}
	switch res {
	case 1:
		model := make(map[string]bool, len(enc.names))
		for _, name := range enc.names {
			model[name] = g.Value(enc.initial[name])
		}
		return cegar.FeasibilityResult{Feasible: true, Model: model}, nil
	case -1:
		var core []int
		for _, m := range g.Why(nil) {
			if i, ok := edgeOf[m]; ok {
				core = append(core, i)
			}
		}
		log.Debugf("Infeasible path, core edges %v", core)
		return cegar.FeasibilityResult{Hint: o.hint(path, core)}, nil
	}
	return cegar.FeasibilityResult{}, &cpa.SolverError{Err: errUndetermined}
}

// hint tracks the variables of the core edges at every location of the path
// after the first edge that mentions one of them.
func (o *SAT) hint(path arg.Path, core []int) cegar.Hint {
	var vars []string
	seen := map[string]bool{}
	for _, i := range core {
		if path.Edges[i] == nil {
			continue
		}
		for _, v := range cfa.Vars(path.Edges[i].Op()) {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	if o.classes != nil {
		vars = o.classes.Close(vars)
		for _, v := range vars {
			seen[v] = true
		}
	}
	sort.Strings(vars)
	if len(vars) == 0 {
		return nil
	}

	first := -1
	for i, e := range path.Edges {
		if e == nil {
			continue
		}
		for _, v := range cfa.Vars(e.Op()) {
			if seen[v] {
				first = i
				break
			}
		}
		if first >= 0 {
			break
		}
	}
	if first < 0 {
		return nil
	}

	var hint cegar.Hint
	for _, loc := range path.Locations()[first+1:] {
		if loc != nil {
			hint = append(hint, cegar.Increment{Location: loc, Delta: vars})
		}
	}
	return hint
}
