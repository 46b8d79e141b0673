package cfa

import (
	"fmt"
	"strings"

	"github.com/sosy-lab/cpachecker-sub130/analysis/expr"
)

// Op is an edge statement. The set of statements is closed; analyses switch
// over the concrete types below and treat anything else as a no-op.
type Op interface {
	fmt.Stringer
	isOp()
}

type (
	// Assume blocks unless Cond holds.
	Assume struct{ Cond expr.Expr }
	// Assign stores the value of Value in Var.
	Assign struct {
		Var   string
		Value expr.Expr
	}
	// Havoc sets Var to an arbitrary value.
	Havoc struct{ Var string }
	Skip  struct{}
)

func (Assume) isOp() {}
func (Assign) isOp() {}
func (Havoc) isOp()  {}
func (Skip) isOp()   {}

func (a Assume) String() string { return "[" + a.Cond.String() + "]" }
func (a Assign) String() string { return a.Var + " = " + a.Value.String() }
func (h Havoc) String() string  { return h.Var + " = *" }
func (Skip) String() string     { return "skip" }

// Vars lists the variables read or written by the statement.
func Vars(op Op) []string {
	switch op := op.(type) {
	case Assume:
		return expr.VarsOf(op.Cond)
	case Assign:
		return expr.VarsOf(expr.Var{Name: op.Var}, op.Value)
	case Havoc:
		return []string{op.Var}
	}
	return nil
}

// ParseAssign reads a statement of the form "x = <expr>".
func ParseAssign(src string) (Assign, error) {
	lhs, rhs, found := strings.Cut(src, "=")
	if !found {
		return Assign{}, fmt.Errorf("%q: missing '='", src)
	}
	lhs = strings.TrimSpace(lhs)
	v, err := expr.Parse(lhs)
	if err != nil {
		return Assign{}, err
	}
	target, ok := v.(expr.Var)
	if !ok {
		return Assign{}, fmt.Errorf("%q: left-hand side is not a variable", src)
	}
	value, err := expr.Parse(rhs)
	if err != nil {
		return Assign{}, err
	}
	return Assign{target.Name, value}, nil
}
