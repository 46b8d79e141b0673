// Package expr implements the boolean expression language of CFA edge
// statements. Expressions use Go syntax (identifiers, true, false, !, &&, ||,
// == and !=) and are evaluated under a three-valued semantics in which a
// variable may be unknown.
package expr

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
)

var ErrUnsupported = errors.New("unsupported expression")

// Env looks up the value of a variable. ok is false for unknown variables.
type Env func(name string) (value, ok bool)

type Expr interface {
	// Eval evaluates the expression. known is false if the result depends on
	// an unknown variable.
	Eval(env Env) (value, known bool)
	// Vars calls add for every variable occurrence.
	Vars(add func(string))
	String() string
}

type (
	Var   struct{ Name string }
	Const struct{ Value bool }
	Not   struct{ X Expr }
	// Binary is one of &&, ||, ==, != over two operands.
	Binary struct {
		Op   token.Token
		X, Y Expr
	}
)

// Parse reads a boolean expression in Go syntax.
func Parse(src string) (Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", src, err)
	}
	e, err := convert(node)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", src, err)
	}
	return e, nil
}

// MustParse is Parse for expressions known to be well-formed.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func convert(node ast.Expr) (Expr, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return convert(n.X)
	case *ast.Ident:
		switch n.Name {
		case "true":
			return Const{true}, nil
		case "false":
			return Const{false}, nil
		}
		return Var{n.Name}, nil
	case *ast.UnaryExpr:
		if n.Op != token.NOT {
			return nil, fmt.Errorf("%w: operator %s", ErrUnsupported, n.Op)
		}
		x, err := convert(n.X)
		if err != nil {
			return nil, err
		}
		return Not{x}, nil
	case *ast.BinaryExpr:
		switch n.Op {
		case token.LAND, token.LOR, token.EQL, token.NEQ:
		default:
			return nil, fmt.Errorf("%w: operator %s", ErrUnsupported, n.Op)
		}
		x, err := convert(n.X)
		if err != nil {
			return nil, err
		}
		y, err := convert(n.Y)
		if err != nil {
			return nil, err
		}
		return Binary{n.Op, x, y}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, node)
	}
}

func (v Var) Eval(env Env) (bool, bool) {
	return env(v.Name)
}

func (v Var) Vars(add func(string)) { add(v.Name) }

func (v Var) String() string { return v.Name }

func (c Const) Eval(Env) (bool, bool) { return c.Value, true }

func (Const) Vars(func(string)) {}

func (c Const) String() string { return fmt.Sprint(c.Value) }

func (n Not) Eval(env Env) (bool, bool) {
	v, known := n.X.Eval(env)
	return !v, known
}

func (n Not) Vars(add func(string)) { n.X.Vars(add) }

// Binary operands print parenthesized, so negation needs no extra grouping.
func (n Not) String() string { return "!" + n.X.String() }

func (b Binary) Eval(env Env) (bool, bool) {
	x, xKnown := b.X.Eval(env)
	y, yKnown := b.Y.Eval(env)

	switch b.Op {
	case token.LAND:
		if (xKnown && !x) || (yKnown && !y) {
			return false, true
		}
		return true, xKnown && yKnown
	case token.LOR:
		if (xKnown && x) || (yKnown && y) {
			return true, true
		}
		return false, xKnown && yKnown
	case token.EQL:
		return x == y, xKnown && yKnown
	case token.NEQ:
		return x != y, xKnown && yKnown
	}
	panic(fmt.Errorf("%w: operator %s", ErrUnsupported, b.Op))
}

func (b Binary) Vars(add func(string)) {
	b.X.Vars(add)
	b.Y.Vars(add)
}

func (b Binary) String() string {
	return "(" + b.X.String() + " " + b.Op.String() + " " + b.Y.String() + ")"
}

// VarsOf returns the sorted, duplicate-free variables of the expressions.
func VarsOf(es ...Expr) []string {
	seen := map[string]struct{}{}
	for _, e := range es {
		if e != nil {
			e.Vars(func(v string) { seen[v] = struct{}{} })
		}
	}
	res := make([]string, 0, len(seen))
	for v := range seen {
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}

// Implied computes bindings that must hold for e to evaluate to want.
// Only conjunctive information is extracted: literals, negations,
// conjunctions asserted true and disjunctions asserted false.
func Implied(e Expr, want bool, bind func(name string, value bool)) {
	switch e := e.(type) {
	case Var:
		bind(e.Name, want)
	case Not:
		Implied(e.X, !want, bind)
	case Binary:
		switch {
		case e.Op == token.LAND && want, e.Op == token.LOR && !want:
			Implied(e.X, want, bind)
			Implied(e.Y, want, bind)
		}
	}
}
