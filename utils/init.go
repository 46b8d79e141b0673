package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type options struct {
	waitlist       string
	merge          string
	reportFormat   string
	outputFormat   string
	out            string
	logLevel       string
	configFile     string
	timeout        time.Duration
	loopBound      uint
	maxRefinements uint
	minlen         uint
	nodesep        float64
	logai          bool
	noColorize     bool
	verbose        bool
	visualize      bool
}

const (
	_WAITLIST_DFS = iota
	_WAITLIST_BFS
	_WAITLIST_TOPO
)

var waitlists = []struct{ flag, explanation string }{{
	"dfs",
	"Depth-first exploration: the most recently added state is expanded first",
}, {
	"bfs",
	"Breadth-first exploration: states are expanded in insertion order",
}, {
	"topo",
	"States are expanded in reverse post-order of their CFA location",
}}

const (
	_MERGE_SEP = iota
	_MERGE_JOIN
)

var merges = []struct{ flag, explanation string }{{
	"sep",
	"Keep states at the same location distinct",
}, {
	"join",
	"Join value states at the same location",
}}

var reports = []string{"text", "markdown", "html"}

var opts = newOptions()

func newOptions() *options {
	return &options{
		waitlist:       waitlists[_WAITLIST_DFS].flag,
		merge:          merges[_MERGE_SEP].flag,
		reportFormat:   reports[0],
		outputFormat:   "dot",
		logLevel:       "info",
		maxRefinements: 100,
		minlen:         1,
		nodesep:        0.35,
	}
}

type optInterface struct{}

type waitlistInterface struct{}

type mergeInterface struct{}

func Opts() optInterface {
	return optInterface{}
}

func (optInterface) Waitlist() waitlistInterface {
	return waitlistInterface{}
}
func (waitlistInterface) String() string {
	return opts.waitlist
}
func (optInterface) Merge() mergeInterface {
	return mergeInterface{}
}
func (mergeInterface) Join() bool {
	return opts.merge == merges[_MERGE_JOIN].flag
}
func (optInterface) ReportFormat() string {
	return opts.reportFormat
}
func (optInterface) OutputFormat() string {
	return opts.outputFormat
}
func (optInterface) Out() string {
	return opts.out
}
func (optInterface) Timeout() time.Duration {
	return opts.timeout
}
func (optInterface) LoopBound() int {
	return int(opts.loopBound)
}
func (optInterface) MaxRefinements() int {
	return int(opts.maxRefinements)
}
func (optInterface) Minlen() uint {
	return opts.minlen
}
func (optInterface) Nodesep() float64 {
	return opts.nodesep
}
func (optInterface) LogAI() bool {
	return opts.logai
}
func (optInterface) Visualize() bool {
	return opts.visualize
}

// BindFlags registers every option on the given flag set.
func BindFlags(fs *pflag.FlagSet) {
	waitlistFlag := "\n"
	for _, w := range waitlists {
		waitlistFlag += w.flag + " -- " + w.explanation + "\n"
	}
	mergeFlag := "\n"
	for _, m := range merges {
		mergeFlag += m.flag + " -- " + m.explanation + "\n"
	}

	fs.StringVar(&opts.waitlist, "waitlist", opts.waitlist, "Exploration order of the waitlist. Options:"+waitlistFlag)
	fs.StringVar(&opts.merge, "merge", opts.merge, "Merge operator of the value analysis. Options:"+mergeFlag)
	fs.StringVar(&opts.reportFormat, "report", opts.reportFormat, "Report format [text | markdown | html]")
	fs.StringVar(&opts.outputFormat, "format", opts.outputFormat, "Graph output format [dot | svg | png | jpg | ...]")
	fs.StringVarP(&opts.out, "out", "o", opts.out, "Output file. Standard output is used when empty.")
	fs.StringVar(&opts.logLevel, "log-level", opts.logLevel, "Logging level [debug | info | warn | error]")
	fs.StringVar(&opts.configFile, "config", opts.configFile, "YAML file with option values. Flags given on the command line take precedence.")
	fs.DurationVar(&opts.timeout, "timeout", opts.timeout, "Interrupt verification after the given duration (0 disables the watchdog)")
	fs.UintVar(&opts.loopBound, "loop-bound", opts.loopBound, "Stop unrolling loops after the given number of iterations (0 disables the bound)")
	fs.UintVar(&opts.maxRefinements, "max-refinements", opts.maxRefinements, "Give up after the given number of refinement rounds")
	fs.UintVar(&opts.minlen, "minlen", opts.minlen, "Minimum edge length (for wider output).")
	fs.Float64Var(&opts.nodesep, "nodesep", opts.nodesep, "Minimum space between two adjacent nodes in the same rank (for taller output).")
	fs.BoolVar(&opts.logai, "ai-logging", opts.logai, "Enable periodic progress logging during exploration")
	fs.BoolVar(&opts.noColorize, "no-colorize", opts.noColorize, "Disable pretty printer colorization")
	fs.BoolVarP(&opts.verbose, "verbose", "v", opts.verbose, "Enable verbose output")
	fs.BoolVar(&opts.visualize, "visualize", opts.visualize, "Render the final ARG with graphviz")
}

// ApplyConfigFile reads option values from the YAML file selected with
// --config. Keys are flag names. Values for flags that were set explicitly
// on the command line are ignored.
func ApplyConfigFile(fs *pflag.FlagSet) error {
	if opts.configFile == "" {
		return nil
	}

	data, err := os.ReadFile(opts.configFile)
	if err != nil {
		return err
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parsing %s: %w", opts.configFile, err)
	}

	for key, value := range values {
		f := fs.Lookup(key)
		if f == nil {
			return fmt.Errorf("%s: unknown option %q", opts.configFile, key)
		}
		if f.Changed {
			continue
		}
		if err := fs.Set(key, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("%s: option %q: %w", opts.configFile, key, err)
		}
	}

	return nil
}

// ValidateOpts checks enumerated option values.
func ValidateOpts() error {
	valid := false
	for _, w := range waitlists {
		if w.flag == opts.waitlist {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("value %q is not valid for --waitlist", opts.waitlist)
	}

	valid = false
	for _, m := range merges {
		if m.flag == opts.merge {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("value %q is not valid for --merge", opts.merge)
	}

	valid = false
	for _, r := range reports {
		if r == opts.reportFormat {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("value %q is not valid for --report, expected one of %s",
			opts.reportFormat, strings.Join(reports, ", "))
	}

	return nil
}

// ResetOpts restores the default option values. Used by tests.
func ResetOpts() {
	*opts = *newOptions()
}
