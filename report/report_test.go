package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosy-lab/cpachecker-sub130/analysis/algorithm"
	"github.com/sosy-lab/cpachecker-sub130/analysis/arg"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cegar"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpa"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/location"
	"github.com/sosy-lab/cpachecker-sub130/analysis/cpas/value"
	"github.com/sosy-lab/cpachecker-sub130/analysis/verifier"
	"github.com/sosy-lab/cpachecker-sub130/testutil"
)

func unsafeResult(t *testing.T) verifier.Result {
	c := testutil.LoadTask(t, `
entry: a
errors: [err]
edges:
  - {from: a, to: b, assign: "x = false"}
  - {from: b, to: err, assume: "x"}
`)
	a, b, e := testutil.Node(t, c, "a"), testutil.Node(t, c, "b"), testutil.Node(t, c, "err")
	after, _ := value.EmptyPrecision().Refine(b, []string{"x"})

	return verifier.Result{
		Verdict: cegar.Unsafe,
		Counterexample: &arg.Path{
			Handles: []arg.Handle{1, 4, 5},
			States:  []cpa.AbstractState{location.StateOf(a), location.StateOf(b), location.StateOf(e)},
			Edges:   []*cfa.Edge{testutil.Edge(t, c, "a", "b"), testutil.Edge(t, c, "b", "err")},
		},
		Model: map[string]bool{"x": true},
		Rounds: []cegar.Round{
			{Target: 3, Pivot: 2, Location: b, Before: value.EmptyPrecision(), After: after, Removed: 2},
			{Target: 5, Feasible: true},
		},
		Stats: verifier.Stats{
			Algorithm:   algorithm.Stats{Popped: 4, Successors: 5, Targets: 2},
			Refinements: 1,
			Removed:     2,
			ReachedSize: 3,
			ARGSize:     5,
		},
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, "branch", unsafeResult(t)))
	goldie.New(t).Assert(t, t.Name(), buf.Bytes())
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, "branch", unsafeResult(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Verification of branch</title>")
	assert.Contains(t, out, "<h1>Verification of branch</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<code>x = false</code>")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	res := verifier.Result{Verdict: cegar.Unknown, Reason: "interrupted: context canceled"}
	require.NoError(t, Text(&buf, "loop", res))
	out := buf.String()

	assert.Contains(t, out, "Task: loop")
	assert.Contains(t, out, "UNKNOWN")
	assert.Contains(t, out, "Reason: interrupted: context canceled")
	assert.NotContains(t, out, "Counterexample")
	assert.Equal(t, 2, strings.Count(out, banner))

	buf.Reset()
	require.NoError(t, Text(&buf, "branch", unsafeResult(t)))
	assert.Contains(t, buf.String(), "x = true")
	assert.Contains(t, buf.String(), "Refinements:")
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "pdf", "branch", verifier.Result{})
	assert.ErrorContains(t, err, `unknown report format "pdf"`)
	assert.Zero(t, buf.Len())

	for _, f := range Formats {
		buf.Reset()
		assert.NoError(t, Write(&buf, f, "branch", verifier.Result{}))
		assert.NotZero(t, buf.Len())
	}
}
