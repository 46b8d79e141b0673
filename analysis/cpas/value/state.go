// Package value is an explicit-value analysis over boolean variables. States
// map variables to definite values; a variable without a binding may take
// either value. Which variables are kept is governed by a location-indexed
// precision that refinement grows.
package value

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/expr"
)

type State struct {
	vals   *immutable.Map[string, bool]
	bottom bool
}

var bottom = &State{bottom: true}

func Top() *State {
	return &State{vals: immutable.NewMap[string, bool](nil)}
}

// StateOf creates a state with the given bindings.
func StateOf(bindings map[string]bool) *State {
	b := immutable.NewMapBuilder[string, bool](nil)
	for k, v := range bindings {
		b.Set(k, v)
	}
	return &State{vals: b.Map()}
}

func (s *State) IsBottom() bool { return s.bottom }

func (s *State) Len() int {
	if s.bottom {
		return 0
	}
	return s.vals.Len()
}

// Value looks up a variable. ok is false if the variable is unconstrained.
func (s *State) Value(name string) (v, ok bool) {
	if s.bottom {
		return false, false
	}
	return s.vals.Get(name)
}

// Env adapts the state for expression evaluation.
func (s *State) Env() expr.Env { return s.Value }

func (s *State) Bind(name string, v bool) *State {
	if old, ok := s.Value(name); s.bottom || (ok && old == v) {
		return s
	}
	return &State{vals: s.vals.Set(name, v)}
}

func (s *State) Forget(name string) *State {
	if _, ok := s.Value(name); !ok {
		return s
	}
	return &State{vals: s.vals.Delete(name)}
}

func (s *State) ForEach(do func(name string, v bool)) {
	if s.bottom {
		return
	}
	for it := s.vals.Iterator(); !it.Done(); {
		k, v, _ := it.Next()
		do(k, v)
	}
}

// Bindings returns the state as a plain map.
func (s *State) Bindings() map[string]bool {
	res := map[string]bool{}
	s.ForEach(func(k string, v bool) { res[k] = v })
	return res
}

func (s *State) Equal(o cpa.AbstractState) bool {
	os, ok := o.(*State)
	if !ok {
		return false
	}
	if s == os {
		return true
	}
	if s.bottom || os.bottom {
		return s.bottom == os.bottom
	}
	return s.Len() == os.Len() && subsumes(s, os)
}

// subsumes reports whether every binding of b also holds in a.
func subsumes(a, b *State) bool {
	res := true
	b.ForEach(func(k string, v bool) {
		if av, ok := a.Value(k); !ok || av != v {
			res = false
		}
	})
	return res
}

func (s *State) String() string {
	if s.bottom {
		return "⊥"
	}
	names := make([]string, 0, s.Len())
	s.ForEach(func(k string, _ bool) { names = append(names, k) })
	sort.Strings(names)

	for i, k := range names {
		if v, _ := s.Value(k); !v {
			names[i] = "!" + k
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}
