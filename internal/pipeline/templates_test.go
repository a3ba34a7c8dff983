package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rendis/agentflow/internal/analysis"
	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/pkg/schema"
)

func TestTemplate_Lookup(t *testing.T) {
	in := TemplateInput{
		Kind:     "executor",
		Phase:    schema.PhaseImplementation,
		Category: analysis.CatBackend,
		Subject:  "add a REST endpoint",
		Entities: analysis.Entities{Files: []string{"api/server.go"}, Technologies: []string{"Go"}},
	}
	got := Template(catalog.CapExecute, schema.PhaseImplementation)(in)
	assert.Equal(t, "Implement the backend and API changes: add a REST endpoint (files: api/server.go) using Go", got)
}

func TestTemplate_ComplexityAware(t *testing.T) {
	fn := Template(catalog.CapAnalyze, schema.PhasePlanning)
	in := TemplateInput{Subject: "x", Complexity: analysis.ComplexityHigh}
	assert.Equal(t, "Design the architecture and implementation strategy: x", fn(in))
	in.Complexity = analysis.ComplexityMedium
	assert.Equal(t, "Review the design and decide the implementation direction: x", fn(in))
}

func TestTemplate_Fallback(t *testing.T) {
	fn := Template(catalog.CapVision, schema.PhaseDiscovery)
	in := TemplateInput{Kind: "vision", Phase: schema.PhaseDiscovery, Subject: "read the mockups"}
	assert.Equal(t, "Run vision for the discovery phase: read the mockups", fn(in))

	in.Subject = ""
	assert.Equal(t, "Run vision for the discovery phase", fn(in))
}

func TestTemplate_FixedText(t *testing.T) {
	in := TemplateInput{Subject: "ignored"}
	assert.Equal(t, "Verify final code quality and architecture", Template(catalog.CapAnalyze, schema.PhaseReview)(in))
	assert.Equal(t, "Check the build and fix any compile or type errors", Template(catalog.CapBuild, schema.PhaseVerification)(in))
}

func TestTemplate_ActionsAndTargets(t *testing.T) {
	in := TemplateInput{
		Kind:     "executor",
		Phase:    schema.PhaseImplementation,
		Category: analysis.CatBugfix,
		Subject:  "checkout fails",
		Entities: analysis.Entities{
			Files:   []string{"checkout.go"},
			Actions: []string{"fix", "deploy"},
			Targets: []string{"server", "payments"},
		},
	}
	assert.Equal(t,
		"Implement the bug fix: checkout fails (files: checkout.go) (actions: fix, deploy; targets: server, payments)",
		Template(catalog.CapExecute, schema.PhaseImplementation)(in))

	for _, key := range []struct {
		capability catalog.Capability
		phase      schema.Phase
	}{
		{catalog.CapPlan, schema.PhasePlanning},
		{catalog.CapDesign, schema.PhaseImplementation},
		{catalog.CapTest, schema.PhaseVerification},
	} {
		got := Template(key.capability, key.phase)(in)
		assert.Contains(t, got, "actions: fix, deploy", key.capability)
		assert.Contains(t, got, "targets: server, payments", key.capability)
	}

	in.Entities = analysis.Entities{Targets: []string{"API"}}
	assert.Equal(t, "Write tests and verify the changes: checkout fails (targets: API)",
		Template(catalog.CapTest, schema.PhaseVerification)(in))
}
