package cfa

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sosy-lab/cpachecker-sub130/analysis/expr"
)

// Task is the on-disk description of a control-flow automaton.
//
//	entry: init
//	errors: [err]
//	edges:
//	  - {from: init, to: loop, assign: "x = false"}
//	  - {from: loop, to: err, assume: "x"}
//	  - {from: loop, to: loop, havoc: y}
//
// Edges without a statement are no-ops. Nodes are created on first mention;
// listing them under "nodes" fixes their numbering.
type Task struct {
	Nodes  []string   `yaml:"nodes"`
	Entry  string     `yaml:"entry"`
	Errors []string   `yaml:"errors"`
	Edges  []TaskEdge `yaml:"edges"`
}

type TaskEdge struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Assume string `yaml:"assume,omitempty"`
	Assign string `yaml:"assign,omitempty"`
	Havoc  string `yaml:"havoc,omitempty"`
}

func (te TaskEdge) op() (Op, error) {
	set := 0
	for _, s := range []string{te.Assume, te.Assign, te.Havoc} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("edge %s -> %s: more than one statement", te.From, te.To)
	}

	switch {
	case te.Assume != "":
		cond, err := expr.Parse(te.Assume)
		if err != nil {
			return nil, err
		}
		return Assume{cond}, nil
	case te.Assign != "":
		return ParseAssign(te.Assign)
	case te.Havoc != "":
		v, err := expr.Parse(te.Havoc)
		if err != nil {
			return nil, err
		}
		if v, ok := v.(expr.Var); ok {
			return Havoc{v.Name}, nil
		}
		return nil, fmt.Errorf("havoc target %q is not a variable", te.Havoc)
	}
	return Skip{}, nil
}

// Build validates the task and constructs its automaton.
func (t *Task) Build() (*CFA, error) {
	b := NewBuilder()
	for _, name := range t.Nodes {
		if _, ok := b.names[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, name)
		}
		b.Node(name)
	}

	for _, te := range t.Edges {
		if te.From == "" || te.To == "" {
			return nil, fmt.Errorf("edge %q -> %q: missing endpoint", te.From, te.To)
		}
		op, err := te.op()
		if err != nil {
			return nil, err
		}
		b.Edge(b.Lookup(te.From), b.Lookup(te.To), op)
	}

	if t.Entry == "" {
		return nil, ErrNoEntry
	}
	b.SetEntry(b.Lookup(t.Entry))
	for _, name := range t.Errors {
		b.MarkError(b.Lookup(name))
	}

	return b.Build()
}

// Decode reads a YAML task description.
func Decode(r io.Reader) (*CFA, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t Task
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding task: %w", err)
	}
	return t.Build()
}

// Parse is Decode for in-memory task descriptions.
func Parse(src []byte) (*CFA, error) {
	return Decode(bytes.NewReader(src))
}

// Load reads the task description in the given file.
func Load(path string) (*CFA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
