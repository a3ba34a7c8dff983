package main

import (
	"fmt"
	"io"

	"github.com/rendis/agentflow/pkg/schema"
)

// progressPrinter writes one line per agent or step status change.
type progressPrinter struct {
	w    io.Writer
	last map[string]schema.AgentStatus
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, last: map[string]schema.AgentStatus{}}
}

// update is called serially by the simulator.
func (p *progressPrinter) update(s schema.ExecutionState) {
	for _, step := range s.Steps {
		key := fmt.Sprintf("step/%d", step.Step)
		if p.changed(key, step.Status) {
			fmt.Fprintf(p.w, "step %d %s\n", step.Step, step.Status)
		}
		for i, a := range step.Agents {
			key := fmt.Sprintf("step/%d/%d", step.Step, i)
			if !p.changed(key, a.Status) {
				continue
			}
			line := fmt.Sprintf("  [%d.%d] %-22s %-9s", step.Step, i+1, a.Type, a.Status)
			switch {
			case a.Status == schema.StatusCompleted:
				line += fmt.Sprintf(" %dms", a.DurationMs)
			case a.Status == schema.StatusFailed:
				line += " " + a.Error
			case a.Attempts > 1:
				line += fmt.Sprintf(" attempt %d", a.Attempts)
			}
			fmt.Fprintln(p.w, line)
		}
	}
}

func (p *progressPrinter) changed(key string, status schema.AgentStatus) bool {
	if p.last[key] == status {
		return false
	}
	first := p.last[key] == ""
	p.last[key] = status
	return !(first && status == schema.StatusPending)
}
