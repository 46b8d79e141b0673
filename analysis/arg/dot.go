package arg

import (
	"fmt"

	"github.com/sosy-lab/cpachecker-sub130/utils/dot"
	"github.com/sosy-lab/cpachecker-sub130/utils/graph"
)

// ToDot renders the graph. Derivation edges are labelled with the CFA
// statement, coverage edges are dashed, and target states are highlighted.
func (g *ARG) ToDot(title string) *dot.DotGraph {
	states := g.States()
	handles := make([]Handle, len(states))
	for i, s := range states {
		handles[i] = s.handle
	}

	G := graph.OfHashable(func(h Handle) []Handle { return g.get(h).children })
	dg := G.ToDotGraph(handles, &graph.VisualizationConfig[Handle]{
		Title: title,
		NodeAttrs: func(h Handle) (string, dot.DotAttrs) {
			s := g.get(h)
			attrs := dot.DotAttrs{"label": s.String()}
			switch {
			case s.IsTarget():
				attrs["fillcolor"] = "tomato"
			case s.IsCovered():
				attrs["fillcolor"] = "lightgray"
			}
			return h.String(), attrs
		},
		EdgeAttrs: func(from, to Handle) dot.DotAttrs {
			if e := g.get(to).edges[from]; e != nil {
				return dot.DotAttrs{"label": fmt.Sprint(e.Op())}
			}
			return nil
		},
		ExtraEdges: func(h Handle) []Handle {
			if by, ok := g.CoveredBy(h); ok {
				return []Handle{by}
			}
			return nil
		},
		ExtraEdgeAttrs: func(from, to Handle) dot.DotAttrs {
			return dot.DotAttrs{"style": "dashed", "label": "covered by"}
		},
	})
	dg.Name = "ARG"
	return dg
}
