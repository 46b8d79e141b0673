package arg

import (
	"fmt"
	"strings"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	W "github.com/sosy-lab/cpachecker-sub130/utils/worklist"
)

// Path is a snapshot of a root-to-state sequence of the graph. It stays valid
// after the graph changes.
type Path struct {
	Handles []Handle
	States  []cpa.AbstractState
	// Edges[i] leads from States[i] to States[i+1].
	Edges []*cfa.Edge
}

func (p Path) Len() int { return len(p.Handles) }

// Locations lists the program location of every state on the path.
func (p Path) Locations() []*cfa.Node {
	res := make([]*cfa.Node, len(p.States))
	for i, s := range p.States {
		res[i], _ = cpa.ExtractLocation(s)
	}
	return res
}

func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p.States {
		fmt.Fprintf(&sb, "%v %v\n", p.Handles[i], s)
		if i < len(p.Edges) {
			fmt.Fprintf(&sb, "  %v\n", p.Edges[i].Op())
		}
	}
	return sb.String()
}

// PathTo extracts a shortest path from a root to h.
func (g *ARG) PathTo(h Handle) (Path, error) {
	if _, ok := g.states[h]; !ok {
		return Path{}, fmt.Errorf("%w: %v is not part of the graph", ErrNoPath, h)
	}

	isRoot := map[Handle]bool{}
	for _, r := range g.roots {
		isRoot[r] = true
	}

	// towards[x] is the next state on the way from x to h.
	towards := map[Handle]Handle{h: 0}
	root := Handle(0)
	W.Start(h, func(x Handle, add func(Handle)) {
		if root != 0 {
			return
		}
		if isRoot[x] {
			root = x
			return
		}
		for _, p := range g.get(x).parents {
			if _, seen := towards[p]; !seen {
				towards[p] = x
				add(p)
			}
		}
	})
	if root == 0 {
		return Path{}, fmt.Errorf("%w: %v", ErrNoPath, h)
	}

	var path Path
	for x := root; ; x = towards[x] {
		s := g.get(x)
		path.Handles = append(path.Handles, x)
		path.States = append(path.States, s.wrapped)
		next := towards[x]
		if next == 0 {
			break
		}
		path.Edges = append(path.Edges, g.get(next).edges[x])
	}
	return path, nil
}
