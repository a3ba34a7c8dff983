package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/agentflow/pkg/schema"
)

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	state := schema.NewExecutionState("run-1", []schema.Step{{
		Index:  1,
		Agents: []schema.PlannedAgent{{NodeID: "n1", Type: "executor", Model: schema.ModelMid}},
	}})
	p.update(state.Clone())
	assert.Empty(t, buf.String())

	state.Steps[0].Status = schema.StatusRunning
	state.Steps[0].Agents[0].Status = schema.StatusRunning
	p.update(state.Clone())
	p.update(state.Clone())

	state.Steps[0].Agents[0].Status = schema.StatusCompleted
	state.Steps[0].Agents[0].DurationMs = 12
	p.update(state.Clone())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "step 1 running", lines[0])
	assert.Contains(t, lines[1], "executor")
	assert.Contains(t, lines[1], "running")
	assert.Contains(t, lines[2], "completed")
	assert.Contains(t, lines[2], "12ms")
}
