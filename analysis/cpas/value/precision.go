package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/utils"
)

type varSet = *immutable.Map[string, struct{}]

// Precision maps locations to the variables whose values are kept there.
type Precision struct {
	all     bool
	tracked *immutable.Map[*cfa.Node, varSet]
}

// EmptyPrecision tracks no variable anywhere.
func EmptyPrecision() *Precision {
	return &Precision{
		tracked: immutable.NewMap[*cfa.Node, varSet](utils.HashableHasher[*cfa.Node]()),
	}
}

// FullPrecision tracks every variable everywhere. It cannot be refined.
func FullPrecision() *Precision {
	p := EmptyPrecision()
	p.all = true
	return p
}

func (p *Precision) Tracks(loc *cfa.Node, name string) bool {
	if p.all {
		return true
	}
	vs, ok := p.tracked.Get(loc)
	if !ok {
		return false
	}
	_, ok = vs.Get(name)
	return ok
}

// TrackedAt lists the variables tracked at a location in sorted order.
func (p *Precision) TrackedAt(loc *cfa.Node) []string {
	vs, ok := p.tracked.Get(loc)
	if !ok {
		return nil
	}
	res := make([]string, 0, vs.Len())
	for it := vs.Iterator(); !it.Done(); {
		k, _, _ := it.Next()
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Refine starts tracking the variables given as a []string at loc.
func (p *Precision) Refine(loc *cfa.Node, increment any) (cpa.Precision, bool) {
	vars, ok := increment.([]string)
	if !ok || p.all {
		return p, false
	}

	vs, found := p.tracked.Get(loc)
	if !found {
		vs = immutable.NewMap[string, struct{}](nil)
	}
	grown := vs.Len()
	for _, v := range vars {
		vs = vs.Set(v, struct{}{})
	}
	if vs.Len() == grown {
		return p, false
	}
	return &Precision{tracked: p.tracked.Set(loc, vs)}, true
}

func (p *Precision) String() string {
	if p.all {
		return "all variables"
	}

	locs := make([]*cfa.Node, 0, p.tracked.Len())
	for it := p.tracked.Iterator(); !it.Done(); {
		loc, _, _ := it.Next()
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].ID() < locs[j].ID() })

	parts := make([]string, len(locs))
	for i, loc := range locs {
		parts[i] = fmt.Sprintf("%v: %s", loc, strings.Join(p.TrackedAt(loc), " "))
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
