package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosy-lab/cpachecker-sub130/utils"
)

const tasks = "../examples/tasks"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	utils.ResetOpts()
	t.Cleanup(utils.ResetOpts)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVerify(t *testing.T) {
	out, err := run(t, "verify", "--report", "markdown", filepath.Join(tasks, "branch.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "# Verification of branch")
	assert.Contains(t, out, "**Verdict:** SAFE")

	out, err = run(t, "verify", "--no-colorize", "--waitlist", "bfs", filepath.Join(tasks, "havoc.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Verdict: UNSAFE")
	assert.Contains(t, out, "Counterexample:")
}

func TestVerifyWithLoopBound(t *testing.T) {
	out, err := run(t, "verify", "--no-colorize", "--loop-bound", "1", filepath.Join(tasks, "loop.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Verdict: UNKNOWN")
	assert.Contains(t, out, "loop bound 1")
}

func TestInvalidOptions(t *testing.T) {
	_, err := run(t, "verify", "--waitlist", "random", filepath.Join(tasks, "branch.yaml"))
	assert.ErrorContains(t, err, `"random" is not valid for --waitlist`)

	_, err = run(t, "verify", "--report", "pdf", filepath.Join(tasks, "branch.yaml"))
	assert.ErrorContains(t, err, "--report")

	_, err = run(t, "verify", filepath.Join(tasks, "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "verify")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("report: markdown\nmerge: join\n"), 0o644))

	out, err := run(t, "verify", "--config", config, filepath.Join(tasks, "copy.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "**Verdict:** SAFE")

	// Flags take precedence over the file.
	out, err = run(t, "verify", "--config", config, "--report", "html", filepath.Join(tasks, "copy.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Verification of copy</h1>")

	require.NoError(t, os.WriteFile(config, []byte("colour: red\n"), 0o644))
	_, err = run(t, "verify", "--config", config, filepath.Join(tasks, "copy.yaml"))
	assert.ErrorContains(t, err, `unknown option "colour"`)
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	out, err := run(t, "verify", "--report", "markdown", "--out", path, filepath.Join(tasks, "trivial.yaml"))
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Verdict:** SAFE")
}

func TestGraphExports(t *testing.T) {
	out, err := run(t, "cfa", filepath.Join(tasks, "loop.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `digraph "CFA"`)
	assert.Contains(t, out, `label="x = false";`)

	out, err = run(t, "arg", filepath.Join(tasks, "branch.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, `digraph "ARG"`)
	assert.Contains(t, out, `label="branch: SAFE";`)
}
