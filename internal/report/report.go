// Package report renders the outcome table the CLI prints after a run,
// using github.com/olekukonko/tablewriter.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ewxrjk/inntest/internal/outcome"
)

// Render writes a summary table of results, one row per test, to w.
func Render(w io.Writer, results []*outcome.Recorder) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test", "Fails", "Xfails", "Compats", "Skips"})
	table.SetAutoFormatHeaders(false)

	for _, r := range results {
		table.Append([]string{
			r.Test(),
			fmt.Sprintf("%d", len(r.Fails)),
			fmt.Sprintf("%d", len(r.ExpectedFails)),
			fmt.Sprintf("%d", len(r.Compats)),
			fmt.Sprintf("%d", len(r.Skips)),
		})
	}

	table.Render()
}

// RenderDetail writes, for each test with any recorded outcome, the
// individual descriptions and captured log lines beneath the summary
// table.
func RenderDetail(w io.Writer, results []*outcome.Recorder) {
	for _, r := range results {
		if len(r.Fails) == 0 && len(r.ExpectedFails) == 0 && len(r.Compats) == 0 && len(r.Skips) == 0 && len(r.Log) == 0 {
			continue
		}
		fmt.Fprintf(w, "== %s ==\n", r.Test())
		for _, e := range r.Fails {
			fmt.Fprintf(w, "  FAIL: %s\n", e.Desc)
		}
		for _, e := range r.ExpectedFails {
			fmt.Fprintf(w, "  XFAIL: %s\n", e.Desc)
		}
		for _, e := range r.Compats {
			fmt.Fprintf(w, "  COMPAT: %s\n", e.Desc)
		}
		for _, e := range r.Skips {
			fmt.Fprintf(w, "  SKIP: %s\n", e.Desc)
		}
		if len(r.Log) > 0 {
			fmt.Fprintf(w, "  log:\n")
			for _, line := range r.Log {
				fmt.Fprintf(w, "    %s\n", strings.TrimRight(line, "\n"))
			}
		}
	}
}

// HardFailed reports whether any result carries a fail. The CLI exits 0 if
// this is false across every test run, 1 otherwise.
func HardFailed(results []*outcome.Recorder) bool {
	for _, r := range results {
		if len(r.Fails) > 0 {
			return true
		}
	}
	return false
}
