// Package varclass partitions the variables of a CFA into classes of
// variables that depend on each other. Two variables are in the same class
// if some statement mentions both, directly or through a chain of
// statements.
package varclass

import (
	"sort"

	uf "github.com/spakin/disjoint"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
)

type Partition struct {
	elements map[string]*uf.Element
}

// Classify computes the dependency partition of the variables of c.
func Classify(c *cfa.CFA) *Partition {
	p := &Partition{elements: map[string]*uf.Element{}}
	for _, e := range c.Edges() {
		p.relate(cfa.Vars(e.Op()))
	}
	return p
}

func (p *Partition) element(v string) *uf.Element {
	el, ok := p.elements[v]
	if !ok {
		el = uf.NewElement()
		el.Data = v
		p.elements[v] = el
	}
	return el
}

// relate puts all of vs into one class.
func (p *Partition) relate(vs []string) {
	for _, v := range vs {
		el := p.element(v)
		if first := p.element(vs[0]); el.Find() != first.Find() {
			uf.Union(first, el)
		}
	}
}

// Same reports whether two variables depend on each other.
func (p *Partition) Same(a, b string) bool {
	ea, ok1 := p.elements[a]
	eb, ok2 := p.elements[b]
	if !ok1 || !ok2 {
		return a == b
	}
	return ea.Find() == eb.Find()
}

// Classes lists the classes, each sorted, ordered by their first variable.
func (p *Partition) Classes() [][]string {
	byRep := map[*uf.Element][]string{}
	for v, el := range p.elements {
		rep := el.Find()
		byRep[rep] = append(byRep[rep], v)
	}

	res := make([][]string, 0, len(byRep))
	for _, class := range byRep {
		sort.Strings(class)
		res = append(res, class)
	}
	sort.Slice(res, func(i, j int) bool { return res[i][0] < res[j][0] })
	return res
}

// Close extends vs with every variable in the class of one of them. The
// result is sorted. Unknown variables are kept as they are.
func (p *Partition) Close(vs []string) []string {
	want := map[*uf.Element]bool{}
	set := map[string]bool{}
	for _, v := range vs {
		set[v] = true
		if el, ok := p.elements[v]; ok {
			want[el.Find()] = true
		}
	}
	for v, el := range p.elements {
		if want[el.Find()] {
			set[v] = true
		}
	}

	res := make([]string, 0, len(set))
	for v := range set {
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}
