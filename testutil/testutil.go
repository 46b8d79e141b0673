// Package testutil loads verification tasks for tests, either from inline
// YAML or from the task corpus under examples/tasks.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
)

// LoadTask parses an inline task description.
func LoadTask(t testing.TB, src string) *cfa.CFA {
	t.Helper()
	c, err := cfa.Parse([]byte(src))
	if err != nil {
		t.Fatalf("loading task: %v", err)
	}
	return c
}

// LoadExample loads examples/tasks/<name>.yaml. pathToRoot is the path from
// the calling package to the module root.
func LoadExample(t testing.TB, pathToRoot string, name string) *cfa.CFA {
	t.Helper()
	c, err := cfa.Load(filepath.Join(pathToRoot, "examples", "tasks", name+".yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// ListExamples lists the names of the tasks in the corpus.
func ListExamples(t testing.TB, pathToRoot string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(pathToRoot, "examples", "tasks"))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Node finds a node by name.
func Node(t testing.TB, c *cfa.CFA, name string) *cfa.Node {
	t.Helper()
	n, ok := c.Node(name)
	if !ok {
		t.Fatalf("no node named %s", name)
	}
	return n
}

// Edge finds the first edge between two named nodes.
func Edge(t testing.TB, c *cfa.CFA, from, to string) *cfa.Edge {
	t.Helper()
	for _, e := range Node(t, c, from).LeavingEdges() {
		if e.Succ().Name() == to {
			return e
		}
	}
	t.Fatalf("no edge %s -> %s", from, to)
	return nil
}
