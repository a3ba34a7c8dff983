package schema

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationResult_EmptyIsValid(t *testing.T) {
	r := &ValidationResult{}
	assert.True(t, r.Valid())
}

func TestValidationResult_AddError(t *testing.T) {
	r := &ValidationResult{}
	r.AddError("nodes[0].agentType", ErrCodeValidation, "unknown agent type")

	assert.False(t, r.Valid())
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "nodes[0].agentType", r.Errors[0].Path)
	assert.Equal(t, ErrCodeValidation, r.Errors[0].Code)
	assert.Equal(t, SeverityError, r.Errors[0].Severity)
}

func TestValidationResult_AddWarning(t *testing.T) {
	r := &ValidationResult{}
	r.AddWarning("edges[2]", ErrCodeImport, "self-loop dropped")

	assert.True(t, r.Valid(), "warnings alone should not make result invalid")
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, SeverityWarning, r.Warnings[0].Severity)
}

func TestValidationResult_Merge(t *testing.T) {
	r1 := &ValidationResult{}
	r1.AddError("/", ErrCodeValidation, "err1")
	r2 := &ValidationResult{}
	r2.AddError("edges[0]", ErrCodeCycleDetected, "err2")
	r2.AddWarning("edges[1]", ErrCodeImport, "warn2")

	r1.Merge(r2)
	r1.Merge(nil)

	assert.Len(t, r1.Errors, 2)
	assert.Len(t, r1.Warnings, 1)
}

func TestValidationResult_ToError(t *testing.T) {
	r := &ValidationResult{}
	r.AddWarning("/", ErrCodeValidation, "just a warning")
	assert.Nil(t, r.ToError())

	r.AddError("nodes", ErrCodeValidation, "nodes is required")
	var fe *FlowError
	require.True(t, errors.As(r.ToError(), &fe))
	assert.Equal(t, "nodes is required", fe.Message)
	assert.Equal(t, 1, fe.Details["error_count"])

	r.AddError("nodes[0]", ErrCodeValidation, "second")
	require.True(t, errors.As(r.ToError(), &fe))
	assert.Equal(t, "validation failed with 2 errors", fe.Message)
}

func TestFlowError_Format(t *testing.T) {
	cause := errors.New("boom")
	err := NewErrorf(ErrCodeAgentFailed, "attempt %d failed", 2).WithNode("node_3").WithCause(cause)

	assert.Equal(t, "[AGENT_FAILED] node node_3: attempt 2 failed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.IsRetryable())
	assert.False(t, NewError(ErrCodeCycleDetected, "cycle").IsRetryable())
	assert.Equal(t, "[CYCLE_DETECTED] cycle", NewError(ErrCodeCycleDetected, "cycle").Error())
}

func TestParseModelTier(t *testing.T) {
	tests := []struct {
		in   string
		want ModelTier
		ok   bool
	}{
		{"low", ModelLow, true},
		{"haiku", ModelLow, true},
		{"Sonnet", ModelMid, true},
		{"mid", ModelMid, true},
		{" opus ", ModelHigh, true},
		{"gpt", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseModelTier(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.False(t, ModelTier("ultra").Valid())
}

func TestDocumentEdge_JSONForms(t *testing.T) {
	var doc PipelineDocument
	raw := `{"nodes":[{"agentType":"explore"},{"agentType":"executor"}],
		"edges":[[0,1],{"source":1,"target":0,"label":"findings"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Len(t, doc.Edges, 2)
	assert.Equal(t, DocumentEdge{Source: 0, Target: 1}, doc.Edges[0])
	assert.Equal(t, DocumentEdge{Source: 1, Target: 0, Label: "findings"}, doc.Edges[1])

	out, err := json.Marshal(doc.Edges)
	require.NoError(t, err)
	assert.JSONEq(t, `[[0,1],{"source":1,"target":0,"label":"findings"}]`, string(out))

	err = json.Unmarshal([]byte(`{"nodes":[],"edges":[[0,1,2]]}`), &doc)
	assert.Error(t, err)
}

func TestExecutionState_CloneIsDeep(t *testing.T) {
	steps := []Step{{Index: 1, Agents: []PlannedAgent{{NodeID: "a", Type: "explore", Model: ModelLow}}}}
	st := NewExecutionState("run-1", steps)
	now := time.Now()
	st.StartedAt = &now
	st.Steps[0].Agents[0].StartedAt = &now

	c := st.Clone()
	c.Steps[0].Agents[0].Status = StatusCompleted
	*c.StartedAt = now.Add(time.Hour)
	*c.Steps[0].Agents[0].StartedAt = now.Add(time.Hour)

	assert.Equal(t, StatusPending, st.Steps[0].Agents[0].Status)
	assert.Equal(t, now, *st.StartedAt)
	assert.Equal(t, now, *st.Steps[0].Agents[0].StartedAt)
	assert.Equal(t, 1, st.Steps[0].Step)
	assert.Equal(t, 0, st.CurrentStep)
	assert.False(t, st.Completed())
}

func TestValidationIssue_String(t *testing.T) {
	assert.Equal(t, "edges[1]: self-loop dropped",
		ValidationIssue{Path: "edges[1]", Message: "self-loop dropped"}.String())
	assert.Equal(t, "graph is nil", ValidationIssue{Path: "/", Message: "graph is nil"}.String())
}
