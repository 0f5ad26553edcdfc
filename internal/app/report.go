package app

import (
	"fmt"
	"strings"

	"github.com/membrango/membrango/internal/scenario"
	"github.com/membrango/membrango/multiset"
	"github.com/membrango/membrango/psys"
	"github.com/membrango/membrango/sim"
)

// report writes the human-readable outcome of one run: a summary line, the
// final contents of every membrane still active, and, when tracing was on,
// one line per snapshot.
func (a *App) report(run *scenario.Run, sys *psys.System, result *sim.Result) {
	fmt.Fprintf(a.out, "simulation %q: steps=%d halted=%t dropped=%d\n",
		run.Name, result.Steps, result.Halted, result.Dropped)

	for _, id := range result.Final.ActiveIDs() {
		label := ""
		if m, ok := sys.Membrane(id); ok {
			label = m.Label
		}
		fmt.Fprintf(a.out, "  membrane %d %q: %s\n", id, label, renderContents(result.Final.Multiset(id)))
	}

	if len(result.Trace) == 0 {
		return
	}
	fmt.Fprintln(a.out, "  trace:")
	for i, snapshot := range result.Trace {
		fmt.Fprintf(a.out, "    step %d: %s\n", i, renderSnapshot(snapshot))
	}
}

// renderContents gives the empty multiset a visible form; Multiset.String
// renders it as the empty string.
func renderContents(ms multiset.Multiset) string {
	if ms.IsEmpty() {
		return "(empty)"
	}
	return ms.String()
}

func renderSnapshot(cfg *sim.Configuration) string {
	ids := cfg.ActiveIDs()
	if len(ids) == 0 {
		return "(no active membranes)"
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d=[%s]", id, cfg.Multiset(id)))
	}
	return strings.Join(parts, " ")
}
