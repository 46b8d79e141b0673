package cfa

import (
	"fmt"
	"strings"

	"github.com/sosy-lab/cpachecker-sub130/utils/dot"
	"github.com/sosy-lab/cpachecker-sub130/utils/graph"
)

// ToDot renders the automaton with statements as edge labels.
func (c *CFA) ToDot(title string) *dot.DotGraph {
	dg := c.Graph().ToDotGraph(c.nodes, &graph.VisualizationConfig[*Node]{
		Title: title,
		NodeAttrs: func(n *Node) (string, dot.DotAttrs) {
			attrs := dot.DotAttrs{"label": n.String()}
			switch {
			case n.isError:
				attrs["fillcolor"] = "tomato"
			case n == c.entry:
				attrs["fillcolor"] = "lightblue"
			}
			if n.loopHead {
				attrs["peripheries"] = "2"
			}
			return fmt.Sprintf("N%d", n.id), attrs
		},
		EdgeAttrs: func(from, to *Node) dot.DotAttrs {
			var ops []string
			for _, e := range from.leaving {
				if e.succ == to {
					ops = append(ops, fmt.Sprint(e.op))
				}
			}
			return dot.DotAttrs{"label": strings.Join(ops, "\n")}
		},
	})
	dg.Name = "CFA"
	return dg
}
