// Package cfa models programs as control-flow automata: nodes are program
// locations and edges carry the statement executed when moving between them.
// The verification core never inspects edge statements; only the concrete
// analyses do.
package cfa

import (
	"errors"
	"fmt"

	"github.com/sosy-lab/cpachecker-sub130/utils/graph"
)

var (
	ErrNoEntry       = errors.New("control-flow automaton has no entry node")
	ErrForeignNode   = errors.New("node belongs to a different automaton")
	ErrDuplicateNode = errors.New("duplicate node name")
)

type Node struct {
	id       int
	name     string
	leaving  []*Edge
	entering []*Edge

	// Position in reverse post-order from the entry, or -1 if unreachable.
	rpo      int
	loopHead bool
	isError  bool

	owner *Builder
}

func (n *Node) ID() int                { return n.id }
func (n *Node) Name() string           { return n.name }
func (n *Node) LeavingEdges() []*Edge  { return n.leaving }
func (n *Node) EnteringEdges() []*Edge { return n.entering }
func (n *Node) ReversePostOrder() int  { return n.rpo }
func (n *Node) IsLoopHead() bool       { return n.loopHead }
func (n *Node) IsError() bool          { return n.isError }

func (n *Node) Hash() uint32 { return uint32(n.id) }

func (n *Node) Equal(o *Node) bool { return n == o }

func (n *Node) String() string {
	if n.name != "" {
		return n.name
	}
	return fmt.Sprintf("N%d", n.id)
}

type Edge struct {
	pred, succ *Node
	op         Op
}

func (e *Edge) Pred() *Node { return e.pred }
func (e *Edge) Succ() *Node { return e.succ }

// Op is the statement executed along the edge.
func (e *Edge) Op() Op { return e.op }

func (e *Edge) String() string {
	return fmt.Sprintf("%v -[%v]-> %v", e.pred, e.op, e.succ)
}

// CFA is a finalized control-flow automaton.
type CFA struct {
	entry     *Node
	nodes     []*Node
	errors    []*Node
	loops     [][]*Node
	reducible bool
}

func (c *CFA) Entry() *Node { return c.entry }

// Nodes lists all nodes ordered by id.
func (c *CFA) Nodes() []*Node { return c.nodes }

// ErrorNodes lists the nodes marked as property violations.
func (c *CFA) ErrorNodes() []*Node { return c.errors }

func (c *CFA) Edges() (res []*Edge) {
	for _, n := range c.nodes {
		res = append(res, n.leaving...)
	}
	return
}

// LoopHeads lists the nodes that are the target of a back edge.
func (c *CFA) LoopHeads() (res []*Node) {
	for _, n := range c.nodes {
		if n.loopHead {
			res = append(res, n)
		}
	}
	return
}

// Loops lists the node sets of the cyclic strongly connected components
// reachable from the entry.
func (c *CFA) Loops() [][]*Node { return c.loops }

// Reducible reports whether every loop head dominates the sources of its
// back edges.
func (c *CFA) Reducible() bool { return c.reducible }

// Node finds a node by name.
func (c *CFA) Node(name string) (*Node, bool) {
	for _, n := range c.nodes {
		if n.name == name {
			return n, true
		}
	}
	return nil, false
}

// Graph exposes the successor relation of the automaton.
func (c *CFA) Graph() graph.Graph[*Node] {
	return graph.OfHashable(func(n *Node) []*Node {
		succs := make([]*Node, 0, len(n.leaving))
		for _, e := range n.leaving {
			succs = append(succs, e.succ)
		}
		return succs
	})
}

// Builder assembles a control-flow automaton node by node.
type Builder struct {
	nodes  []*Node
	names  map[string]*Node
	entry  *Node
	frozen bool
}

func NewBuilder() *Builder {
	return &Builder{names: map[string]*Node{}}
}

// Node creates a fresh node. An empty name is allowed; the node is then
// printed by its id.
func (b *Builder) Node(name string) *Node {
	if b.frozen {
		panic("cfa: builder used after Build")
	}
	n := &Node{
		id:    len(b.nodes),
		name:  name,
		rpo:   -1,
		owner: b,
	}
	b.nodes = append(b.nodes, n)
	if name != "" {
		b.names[name] = n
	}
	return n
}

// Lookup returns the node with the given name, creating it on first use.
func (b *Builder) Lookup(name string) *Node {
	if n, ok := b.names[name]; ok {
		return n
	}
	return b.Node(name)
}

func (b *Builder) check(ns ...*Node) {
	for _, n := range ns {
		if n.owner != b {
			panic(fmt.Errorf("%w: %v", ErrForeignNode, n))
		}
	}
}

// Edge connects from and to with the given statement. A nil statement is
// treated as a no-op.
func (b *Builder) Edge(from, to *Node, op Op) *Edge {
	b.check(from, to)
	if op == nil {
		op = Skip{}
	}
	e := &Edge{from, to, op}
	from.leaving = append(from.leaving, e)
	to.entering = append(to.entering, e)
	return e
}

func (b *Builder) SetEntry(n *Node) {
	b.check(n)
	b.entry = n
}

func (b *Builder) MarkError(ns ...*Node) {
	b.check(ns...)
	for _, n := range ns {
		n.isError = true
	}
}

// Build finalizes the automaton: nodes reachable from the entry are numbered
// in reverse post-order and targets of back edges are flagged as loop heads.
func (b *Builder) Build() (*CFA, error) {
	if b.entry == nil {
		return nil, ErrNoEntry
	}
	b.frozen = true

	c := &CFA{entry: b.entry, nodes: b.nodes}
	for _, n := range b.nodes {
		if n.isError {
			c.errors = append(c.errors, n)
		}
	}

	G := c.Graph()
	for i, n := range G.ReversePostOrder(c.entry) {
		n.rpo = i
	}

	c.reducible = true
	dom := G.DominatorTree(c.entry)
	for _, n := range b.nodes {
		if n.rpo < 0 {
			continue
		}
		for _, e := range n.entering {
			pred := e.pred
			// Retreating edges in reverse post-order are exactly the DFS
			// back edges.
			if pred.rpo < 0 || pred.rpo < n.rpo {
				continue
			}
			n.loopHead = true
			if !dom.Dominates(n, pred) {
				c.reducible = false
			}
		}
	}

	scc := G.SCC([]*Node{c.entry})
	for _, comp := range scc.Components {
		if scc.IsCyclic(comp[0]) {
			c.loops = append(c.loops, comp)
		}
	}

	return c, nil
}
