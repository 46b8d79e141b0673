package graph

import "fmt"

// Source: https://www.cs.rice.edu/~keith/EMBED/dom.pdf

// DominatorTree is the immediate-dominator relation of the nodes reachable
// from a root. Nodes are identified by their DFS post-order number.
type DominatorTree[T any] struct {
	order         []T
	postorderTime Mapper[T]
	doms          []int
}

// PostOrder computes a DFS post-order of the nodes reachable from root,
// together with the predecessor lists restricted to reachable nodes.
func (G Graph[T]) PostOrder(root T) (order []T, postorderTime Mapper[T], pred Mapper[T]) {
	postorderTime = G.mapFactory()
	pred = G.mapFactory()

	time := 0
	var dfs func(T)
	dfs = func(node T) {
		if _, seen := postorderTime.Get(node); seen {
			return
		}

		postorderTime.Set(node, -1)

		for _, e := range G.Edges(node) {
			var preds []T
			if predsItf, found := pred.Get(e); found {
				preds = predsItf.([]T)
			}

			pred.Set(e, append(preds, node))

			dfs(e)
		}

		postorderTime.Set(node, time)
		order = append(order, node)
		time++
	}

	dfs(root)
	return
}

// ReversePostOrder lists the nodes reachable from root in reverse DFS
// post-order. For acyclic parts of the graph this is a topological order.
func (G Graph[T]) ReversePostOrder(root T) []T {
	order, _, _ := G.PostOrder(root)
	rpo := make([]T, len(order))
	for i, n := range order {
		rpo[len(order)-1-i] = n
	}
	return rpo
}

func (G Graph[T]) DominatorTree(root T) DominatorTree[T] {
	order, postorderTime, pred := G.PostOrder(root)
	time := len(order)

	// Initialize doms to "Undefined"
	doms := make([]int, time)
	for i := 0; i < time; i++ {
		doms[i] = -1
	}
	doms[time-1] = time - 1

	intersect := func(a, b int) int {
		for a != b {
			if a < b {
				a = doms[a]
			} else {
				b = doms[b]
			}
		}
		return a
	}

	for {
		changed := false

		// Process nodes in reverse post-order (except for root)
		for i := time - 2; i >= 0; i-- {
			node := order[i]

			newIdom := -1
			predsItf, _ := pred.Get(node)

			for _, predecessor := range predsItf.([]T) {
				jItf, _ := postorderTime.Get(predecessor)
				j := jItf.(int)

				if doms[j] != -1 {
					if newIdom == -1 {
						newIdom = j
					} else {
						newIdom = intersect(j, newIdom)
					}
				}
			}

			if newIdom != doms[i] {
				doms[i] = newIdom
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return DominatorTree[T]{order, postorderTime, doms}
}

func (D DominatorTree[T]) time(node T) int {
	iItf, found := D.postorderTime.Get(node)
	if !found {
		panic(fmt.Errorf("%v was not reachable when computing the dominator tree", node))
	}
	return iItf.(int)
}

// Dominates checks whether every path from the root to b passes through a.
func (D DominatorTree[T]) Dominates(a, b T) bool {
	ta, tb := D.time(a), D.time(b)
	root := len(D.order) - 1
	for {
		if tb == ta {
			return true
		}
		if tb == root {
			return false
		}
		tb = D.doms[tb]
	}
}

// Reachable checks whether the node was reached from the root.
func (D DominatorTree[T]) Reachable(node T) bool {
	_, found := D.postorderTime.Get(node)
	return found
}
