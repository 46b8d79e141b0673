package graph

import W "github.com/sosy-lab/cpachecker-sub130/utils/worklist"

type traversalFunc[T any] func(node T) (stop bool)

// BFSV performs a breadth-first search from the provided start nodes, calling
// f for every reachable node, stopping early if f returns true.
// Returns whether the search stopped early.
func (G Graph[T]) BFSV(f traversalFunc[T], starts ...T) bool {
	visited := G.mapFactory()
	for _, start := range starts {
		visited.Set(start, true)
	}

	done := false
	W.StartV(starts, func(node T, add func(T)) {
		if done || f(node) {
			done = true
			return
		}

		for _, next := range G.Edges(node) {
			if _, found := visited.Get(next); !found {
				visited.Set(next, true)
				add(next)
			}
		}
	})

	return done
}

// BFS is BFSV with a single start node.
func (G Graph[T]) BFS(start T, f traversalFunc[T]) bool {
	return G.BFSV(f, start)
}

// DFS visits the nodes reachable from start in depth-first pre-order,
// following edges in the order given by the edge relation.
// Returns whether the search stopped early.
func (G Graph[T]) DFS(start T, f traversalFunc[T]) bool {
	visited := G.mapFactory()
	stack := W.Empty[T]()
	stack.Add(start)

	for !stack.IsEmpty() {
		node := stack.GetLast()
		if _, seen := visited.Get(node); seen {
			continue
		}
		visited.Set(node, true)
		if f(node) {
			return true
		}

		edges := G.Edges(node)
		for i := len(edges) - 1; i >= 0; i-- {
			if _, seen := visited.Get(edges[i]); !seen {
				stack.Add(edges[i])
			}
		}
	}
	return false
}
