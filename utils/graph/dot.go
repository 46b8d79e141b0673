package graph

import (
	"fmt"

	"github.com/sosy-lab/cpachecker-sub130/utils"
	"github.com/sosy-lab/cpachecker-sub130/utils/dot"
)

var opts = utils.Opts()

type VisualizationConfig[T any] struct {
	// Title of the rendered graph.
	Title string
	// Provides the ID and attributes for dot nodes.
	// If not provided, the ID is the stringified node.
	NodeAttrs func(node T) (string, dot.DotAttrs)
	// Provides the attributes of the edge between two nodes.
	EdgeAttrs func(from, to T) dot.DotAttrs
	// Extra edges that are not part of the edge relation, e.g. coverage.
	ExtraEdges func(node T) []T
	// Provides the attributes of extra edges.
	ExtraEdgeAttrs func(from, to T) dot.DotAttrs
	// If provided, will create clusters for nodes with the same key.
	// The returned key must be safe to use in a Go map.
	ClusterKey func(node T) any
	// Provides the ID and attributes for dot clusters.
	ClusterAttrs func(key any) (string, dot.DotAttrs)
}

func (G Graph[T]) ToDotGraph(nodes []T, cfg *VisualizationConfig[T]) *dot.DotGraph {
	if cfg == nil {
		cfg = &VisualizationConfig[T]{}
	}

	dg := &dot.DotGraph{
		Title: cfg.Title,
		Options: map[string]string{
			"minlen":  fmt.Sprint(opts.Minlen()),
			"nodesep": fmt.Sprint(opts.Nodesep()),
			"rankdir": "TB",
		},
	}

	keyToCluster := map[interface{}]*dot.DotCluster{}
	getCluster := func(key interface{}) *dot.DotCluster {
		if cluster, found := keyToCluster[key]; found {
			return cluster
		}

		var id string
		var attrs dot.DotAttrs
		if cfg.ClusterAttrs != nil {
			id, attrs = cfg.ClusterAttrs(key)
		} else {
			id = fmt.Sprint(key)
		}

		cluster := dot.NewDotCluster(id)
		if attrs != nil {
			cluster.Attrs = attrs
		}
		dg.Clusters = append(dg.Clusters, cluster)

		keyToCluster[key] = cluster
		return cluster
	}

	// Add nodes to graph
	nodeToDotNode := G.mapFactory()
	for _, node := range nodes {
		dNode := &dot.DotNode{}

		if cfg.NodeAttrs != nil {
			dNode.ID, dNode.Attrs = cfg.NodeAttrs(node)
		} else {
			dNode.ID = fmt.Sprint(node)
		}

		nodeToDotNode.Set(node, dNode)

		if cfg.ClusterKey != nil {
			cl := getCluster(cfg.ClusterKey(node))
			cl.Nodes = append(cl.Nodes, dNode)
		} else {
			dg.Nodes = append(dg.Nodes, dNode)
		}
	}

	addEdges := func(from T, tos []T, attrs func(from, to T) dot.DotAttrs) {
		a, _ := nodeToDotNode.Get(from)
		for _, to := range tos {
			if b, found := nodeToDotNode.Get(to); found {
				edge := &dot.DotEdge{
					From: a.(*dot.DotNode),
					To:   b.(*dot.DotNode),
				}
				if attrs != nil {
					edge.Attrs = attrs(from, to)
				}
				dg.Edges = append(dg.Edges, edge)
			}
		}
	}

	// Add edges to graph
	for _, node := range nodes {
		addEdges(node, G.Edges(node), cfg.EdgeAttrs)
		if cfg.ExtraEdges != nil {
			addEdges(node, cfg.ExtraEdges(node), cfg.ExtraEdgeAttrs)
		}
	}

	return dg
}
