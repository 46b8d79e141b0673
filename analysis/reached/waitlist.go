package reached

import (
	"fmt"

	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/utils/pq"
	W "github.com/sosy-lab/cpachecker-sub130/utils/worklist"
)

// Policy selects the order in which waiting states are explored.
type Policy int

const (
	DFS Policy = iota
	BFS
	// Topological explores states in reverse post-order of their locations.
	Topological
)

func (p Policy) String() string {
	switch p {
	case DFS:
		return "dfs"
	case BFS:
		return "bfs"
	case Topological:
		return "topo"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy reads the name of a policy.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range []Policy{DFS, BFS, Topological} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown waitlist policy %q", s)
}

// Waitlist holds the states that still need to be expanded. A state is
// contained at most once.
type Waitlist interface {
	Add(h arg.Handle)
	// Pop removes the next state according to the policy.
	Pop() (arg.Handle, bool)
	Remove(h arg.Handle) bool
	Contains(h arg.Handle) bool
	Len() int
}

type dequeWaitlist struct {
	lifo    bool
	queue   W.Worklist[arg.Handle]
	members map[arg.Handle]bool
}

func newDeque(lifo bool) *dequeWaitlist {
	return &dequeWaitlist{
		lifo:    lifo,
		queue:   W.Empty[arg.Handle](),
		members: map[arg.Handle]bool{},
	}
}

func (w *dequeWaitlist) Add(h arg.Handle) {
	if !w.members[h] {
		w.members[h] = true
		w.queue.Add(h)
	}
}

func (w *dequeWaitlist) Pop() (arg.Handle, bool) {
	if w.queue.IsEmpty() {
		return 0, false
	}
	var h arg.Handle
	if w.lifo {
		h = w.queue.GetLast()
	} else {
		h = w.queue.GetNext()
	}
	delete(w.members, h)
	return h, true
}

func (w *dequeWaitlist) Remove(h arg.Handle) bool {
	if !w.members[h] {
		return false
	}
	delete(w.members, h)
	w.queue.Filter(func(x arg.Handle) bool { return x != h })
	return true
}

func (w *dequeWaitlist) Contains(h arg.Handle) bool { return w.members[h] }

func (w *dequeWaitlist) Len() int { return w.queue.Len() }

type priorityWaitlist struct {
	queue pq.PriorityQueue[arg.Handle]
}

// newPriority orders states by key, breaking ties in favour of the most
// recently created state.
func newPriority(key func(arg.Handle) int) *priorityWaitlist {
	return &priorityWaitlist{pq.Empty(func(a, b arg.Handle) bool {
		if ka, kb := key(a), key(b); ka != kb {
			return ka < kb
		}
		return a > b
	})}
}

func (w *priorityWaitlist) Add(h arg.Handle) { w.queue.Add(h) }

func (w *priorityWaitlist) Pop() (arg.Handle, bool) {
	if w.queue.IsEmpty() {
		return 0, false
	}
	return w.queue.GetNext(), true
}

func (w *priorityWaitlist) Remove(h arg.Handle) bool { return w.queue.Remove(h) }

func (w *priorityWaitlist) Contains(h arg.Handle) bool { return w.queue.Contains(h) }

func (w *priorityWaitlist) Len() int { return w.queue.Len() }
