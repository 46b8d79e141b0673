// Package cpa defines the configurable program analysis contract: an abstract
// domain together with transfer, merge, stop and precision-adjustment
// operators. The exploration algorithm is written against these interfaces
// only and never inspects concrete abstract states.
package cpa

import (
	"context"
	"fmt"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
)

type (
	// AbstractState is an element of some abstract domain. States are
	// immutable once handed to the engine.
	AbstractState interface {
		fmt.Stringer
	}

	// Precision configures how coarsely a state is abstracted.
	Precision interface {
		fmt.Stringer
	}

	// Targetable is implemented by states that can denote a property
	// violation.
	Targetable interface {
		IsTarget() bool
	}

	// Locatable is implemented by states that know their program location.
	Locatable interface {
		Location() *cfa.Node
	}

	// Equaler is implemented by states whose equality is not Go equality.
	Equaler interface {
		Equal(AbstractState) bool
	}
)

// IsTarget reports whether the state denotes a property violation.
func IsTarget(s AbstractState) bool {
	t, ok := s.(Targetable)
	return ok && t.IsTarget()
}

// ExtractLocation finds the program location of a state, if it has one.
func ExtractLocation(s AbstractState) (*cfa.Node, bool) {
	if l, ok := s.(Locatable); ok {
		if n := l.Location(); n != nil {
			return n, true
		}
	}
	return nil, false
}

// Equal compares two states, preferring the states' own notion of equality.
func Equal(a, b AbstractState) bool {
	if e, ok := a.(Equaler); ok {
		return e.Equal(b)
	}
	return Identical(a, b)
}

// Identical compares states by identity. Values of non-comparable dynamic
// types are never identical.
func Identical[T any](a, b T) (res bool) {
	defer func() {
		if recover() != nil {
			res = false
		}
	}()
	return any(a) == any(b)
}

type AbstractDomain interface {
	// IsLessOrEqual is the partial order of the domain: a is at least as
	// precise as b.
	IsLessOrEqual(a, b AbstractState) (bool, error)
	// Join computes an upper bound of a and b.
	Join(a, b AbstractState) (AbstractState, error)
	Top() AbstractState
	Bottom() AbstractState
}

type TransferRelation interface {
	// Successors computes the abstract successors of s along edge. An empty
	// result means the edge is infeasible from s.
	Successors(ctx context.Context, s AbstractState, p Precision, edge *cfa.Edge) ([]AbstractState, error)
}

// Strengthener is implemented by transfer relations that refine their
// successors using the successors of the other components of a product.
type Strengthener interface {
	// Strengthen refines s, which was produced along edge. others holds the
	// successor of every product component in order, including s itself.
	// An empty result discards the successor.
	Strengthen(ctx context.Context, s AbstractState, others []AbstractState, edge *cfa.Edge, p Precision) ([]AbstractState, error)
}

// MergeOperator combines a new state with a reached state at the same
// location. The result is interpreted by identity:
//   - reached itself means nothing changed,
//   - newState itself means the states stay separate,
//   - any other value is the merged state and replaces reached.
type MergeOperator interface {
	Merge(newState, reached AbstractState, p Precision) (AbstractState, error)
}

type StopOperator interface {
	// Stop reports whether s is covered by the given reached states.
	Stop(s AbstractState, reached []AbstractState, p Precision) (bool, error)
}

// CoveringStop is implemented by stop operators that can name the state
// covering s.
type CoveringStop interface {
	StopOperator
	// CoveredBy returns the index of a reached state covering s, or -1.
	CoveredBy(s AbstractState, reached []AbstractState, p Precision) (int, error)
}

// Action tells the exploration algorithm how to proceed with a state after
// precision adjustment.
type Action int

const (
	Continue Action = iota
	// Break stops exploring the branch. The successor is dropped.
	Break
)

func (a Action) String() string {
	if a == Break {
		return "BREAK"
	}
	return "CONTINUE"
}

// ReachedView is a read-only view of the reached set.
type ReachedView interface {
	Size() int
	// StatesAt lists the reached states at a location.
	StatesAt(loc *cfa.Node) []AbstractState
}

type PrecisionAdjustmentResult struct {
	State     AbstractState
	Precision Precision
	Action    Action
}

type PrecisionAdjustment interface {
	// Prec may abstract s and change its precision. full is the complete
	// product state s is part of, which lets a component query properties
	// such as the location that its own state does not carry.
	Prec(ctx context.Context, s AbstractState, p Precision, reached ReachedView, full AbstractState) (PrecisionAdjustmentResult, error)
}

// DomainBound is implemented by operators that consult an abstract domain.
type DomainBound interface {
	Domain() AbstractDomain
}

// RefinablePrecision is implemented by precisions that can grow by a
// refinement increment at a location.
type RefinablePrecision interface {
	Precision
	// Refine adds increment at loc. changed reports whether the precision at
	// loc strictly grew. Increments of a foreign type are ignored.
	Refine(loc *cfa.Node, increment any) (p Precision, changed bool)
}

// CPA bundles a domain with its operators.
type CPA interface {
	AbstractDomain() AbstractDomain
	TransferRelation() TransferRelation
	MergeOperator() MergeOperator
	StopOperator() StopOperator
	PrecisionAdjustment() PrecisionAdjustment
	InitialState(loc *cfa.Node) (AbstractState, error)
	InitialPrecision(loc *cfa.Node) (Precision, error)
}

// CheckWiring verifies that every operator of c that consults a domain
// consults c's own domain.
func CheckWiring(c CPA) error {
	d := c.AbstractDomain()
	if d == nil {
		return NewAnalysisError("%T has no abstract domain", c)
	}

	for _, op := range []any{
		c.TransferRelation(),
		c.MergeOperator(),
		c.StopOperator(),
		c.PrecisionAdjustment(),
	} {
		if op == nil {
			return NewAnalysisError("%T is missing an operator", c)
		}
		if db, ok := op.(DomainBound); ok && !Identical(db.Domain(), d) {
			return NewAnalysisError("%T: operator %T is wired to domain %T, not %T",
				c, op, db.Domain(), d)
		}
	}
	return nil
}
