// Package report renders verification results for humans.
package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cegar"
	"github.com/sosy-lab/cpachecker-sub130/analysis/verifier"
	"github.com/sosy-lab/cpachecker-sub130/utils"
)

const banner = "================ Results ====================="

var Formats = []string{"text", "markdown", "html"}

// Write renders res in the given format. name identifies the task.
func Write(w io.Writer, format string, name string, res verifier.Result) error {
	switch format {
	case "text":
		return Text(w, name, res)
	case "markdown":
		return Markdown(w, name, res)
	case "html":
		return HTML(w, name, res)
	}
	return fmt.Errorf("unknown report format %q, expected one of %s", format, strings.Join(Formats, ", "))
}

type row struct{ measure, value string }

func statRows(s verifier.Stats) []row {
	return []row{
		{"Refinements", fmt.Sprint(s.Refinements)},
		{"Reached states", fmt.Sprint(s.ReachedSize)},
		{"ARG states", fmt.Sprint(s.ARGSize)},
		{"Removed states", fmt.Sprint(s.Removed)},
		{"Expanded states", fmt.Sprint(s.Algorithm.Popped)},
		{"Successors", fmt.Sprint(s.Algorithm.Successors)},
		{"Merges", fmt.Sprint(s.Algorithm.Merges)},
		{"Covered states", fmt.Sprint(s.Algorithm.Covered)},
		{"Loop bound cutoffs", fmt.Sprint(s.Algorithm.Breaks)},
		{"Targets found", fmt.Sprint(s.Algorithm.Targets)},
		{"Time", s.Duration.String()},
	}
}

func sortedVars(m map[string]bool) []string {
	res := make([]string, 0, len(m))
	for v := range m {
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}

func refined(rounds []cegar.Round) []cegar.Round {
	var res []cegar.Round
	for _, r := range rounds {
		if r.Location != nil {
			res = append(res, r)
		}
	}
	return res
}

func colorVerdict(v cegar.Verdict) string {
	switch v {
	case cegar.Safe:
		return utils.Colorize.Safe(v)
	case cegar.Unsafe:
		return utils.Colorize.Target(v)
	}
	return utils.Colorize.Unknown(v)
}

// Text writes a colorized summary for the terminal.
func Text(w io.Writer, name string, res verifier.Result) error {
	var b strings.Builder
	b.WriteString(banner + "\n\n")
	fmt.Fprintf(&b, "Task: %s\n", name)
	fmt.Fprintf(&b, "Verdict: %s\n", colorVerdict(res.Verdict))
	if res.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", res.Reason)
	}

	if p := res.Counterexample; p != nil {
		b.WriteString("\nCounterexample:\n")
		locs := p.Locations()
		for i, h := range p.Handles {
			fmt.Fprintf(&b, "  %s %s\n", utils.Colorize.State(h), utils.Colorize.Location(locs[i]))
			if i < len(p.Edges) && p.Edges[i] != nil {
				fmt.Fprintf(&b, "    %s\n", utils.Colorize.Edge(p.Edges[i].Op()))
			}
		}
	}
	if len(res.Model) > 0 {
		b.WriteString("\nInput:\n")
		for _, v := range sortedVars(res.Model) {
			fmt.Fprintf(&b, "  %s = %v\n", v, res.Model[v])
		}
	}

	for i, r := range refined(res.Rounds) {
		if i == 0 {
			b.WriteString("\nRefinements:\n")
		}
		fmt.Fprintf(&b, "  %d. at %s, removed %d states, precision %s\n",
			i+1, utils.Colorize.Location(r.Location), r.Removed, utils.Colorize.Faint(r.After))
	}

	b.WriteString("\n")
	for _, r := range statRows(res.Stats) {
		fmt.Fprintf(&b, "%-20s %s\n", r.measure+":", r.value)
	}
	b.WriteString("\n" + banner + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func cell(v any) string {
	return strings.ReplaceAll(fmt.Sprint(v), "|", `\|`)
}

// Markdown writes the result as a Markdown document.
func Markdown(w io.Writer, name string, res verifier.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Verification of %s\n\n", name)
	fmt.Fprintf(&b, "**Verdict:** %v\n", res.Verdict)
	if res.Reason != "" {
		fmt.Fprintf(&b, "\n**Reason:** %s\n", res.Reason)
	}

	if p := res.Counterexample; p != nil {
		b.WriteString("\n## Counterexample\n\n")
		b.WriteString("| # | State | Location | Statement |\n|---|---|---|---|\n")
		locs := p.Locations()
		for i, h := range p.Handles {
			stmt := ""
			if i < len(p.Edges) && p.Edges[i] != nil {
				stmt = "`" + cell(p.Edges[i].Op()) + "`"
			}
			fmt.Fprintf(&b, "| %d | %v | %s | %s |\n", i+1, h, cell(locs[i]), stmt)
		}
	}

	if len(res.Model) > 0 {
		b.WriteString("\n## Input\n\n")
		b.WriteString("| Variable | Value |\n|---|---|\n")
		for _, v := range sortedVars(res.Model) {
			fmt.Fprintf(&b, "| %s | %v |\n", v, res.Model[v])
		}
	}

	if rounds := refined(res.Rounds); len(rounds) > 0 {
		b.WriteString("\n## Refinements\n\n")
		b.WriteString("| Round | Location | Pivot | Removed | Precision |\n|---|---|---|---|---|\n")
		for i, r := range rounds {
			fmt.Fprintf(&b, "| %d | %s | %v | %d | %s |\n", i+1, cell(r.Location), r.Pivot, r.Removed, cell(r.After))
		}
	}

	b.WriteString("\n## Statistics\n\n")
	b.WriteString("| Measure | Value |\n|---|---|\n")
	for _, r := range statRows(res.Stats) {
		fmt.Fprintf(&b, "| %s | %s |\n", r.measure, r.value)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Verification of %s</title>
</head>
<body>
`

// HTML writes a standalone page converted from the Markdown report.
func HTML(w io.Writer, name string, res verifier.Result) error {
	var src bytes.Buffer
	if err := Markdown(&src, name, res); err != nil {
		return err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(name)); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
