package pipeline

import (
	"fmt"
	"strings"

	"github.com/rendis/agentflow/internal/analysis"
	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/pkg/schema"
)

// TemplateInput is everything an instruction template may interpolate.
type TemplateInput struct {
	Kind       string
	Phase      schema.Phase
	Category   string
	Subject    string
	Entities   analysis.Entities
	Complexity analysis.Complexity
}

// TemplateFunc renders a node instruction. Templates are pure.
type TemplateFunc func(in TemplateInput) string

type templateKey struct {
	capability catalog.Capability
	phase      schema.Phase
}

var templates = map[templateKey]TemplateFunc{
	{catalog.CapExplore, schema.PhaseDiscovery}: func(in TemplateInput) string {
		return about("Explore the project structure and locate the relevant code", in) + files(in)
	},
	{catalog.CapResearch, schema.PhaseDiscovery}: func(in TemplateInput) string {
		subject := "the libraries and APIs involved"
		if len(in.Entities.Technologies) > 0 {
			subject = strings.Join(in.Entities.Technologies, ", ")
		}
		return about("Research official documentation for "+subject, in)
	},
	{catalog.CapAnalyzeData, schema.PhaseDiscovery}: func(in TemplateInput) string {
		return about("Analyze the data structures and requirements", in) + files(in)
	},
	{catalog.CapPlan, schema.PhasePlanning}: func(in TemplateInput) string {
		return about("Analyze requirements and derive constraints", in) + focus(in)
	},
	{catalog.CapAnalyze, schema.PhasePlanning}: func(in TemplateInput) string {
		if in.Complexity == analysis.ComplexityHigh {
			return about("Design the architecture and implementation strategy", in) + stack(in)
		}
		return about("Review the design and decide the implementation direction", in)
	},
	{catalog.CapExecute, schema.PhaseImplementation}: func(in TemplateInput) string {
		var lead string
		switch in.Category {
		case analysis.CatBugfix:
			lead = "Implement the bug fix"
		case analysis.CatBackend:
			lead = "Implement the backend and API changes"
		case analysis.CatFrontend:
			lead = "Implement the frontend UI"
		case analysis.CatSecurity:
			lead = "Implement the security improvements"
		case analysis.CatRefactor:
			lead = "Refactor the affected code"
		default:
			lead = "Implement the core functionality"
		}
		return about(lead, in) + files(in) + stack(in) + focus(in)
	},
	{catalog.CapDesign, schema.PhaseImplementation}: func(in TemplateInput) string {
		return about("Implement the UI/UX components", in) + files(in) + stack(in) + focus(in)
	},
	{catalog.CapAnalyzeData, schema.PhaseImplementation}: func(in TemplateInput) string {
		return about("Implement the data processing and analysis", in) + stack(in)
	},
	{catalog.CapBuild, schema.PhaseVerification}: func(TemplateInput) string {
		return "Check the build and fix any compile or type errors"
	},
	{catalog.CapSecure, schema.PhaseVerification}: func(in TemplateInput) string {
		return about("Scan for and review security vulnerabilities", in)
	},
	{catalog.CapTest, schema.PhaseVerification}: func(in TemplateInput) string {
		return about("Write tests and verify the changes", in) + files(in) + focus(in)
	},
	{catalog.CapAnalyze, schema.PhaseReview}: func(TemplateInput) string {
		return "Verify final code quality and architecture"
	},
	{catalog.CapDocument, schema.PhaseReview}: func(in TemplateInput) string {
		return about("Update the documentation and README", in)
	},
}

// genericTemplate is used for any (capability, phase) pair without an entry.
func genericTemplate(in TemplateInput) string {
	return about(fmt.Sprintf("Run %s for the %s phase", in.Kind, in.Phase), in)
}

// Template returns the template for a capability and phase, falling back to
// the generic one.
func Template(capability catalog.Capability, phase schema.Phase) TemplateFunc {
	if fn, ok := templates[templateKey{capability, phase}]; ok {
		return fn
	}
	return genericTemplate
}

func about(lead string, in TemplateInput) string {
	if in.Subject == "" {
		return lead
	}
	return lead + ": " + in.Subject
}

func files(in TemplateInput) string {
	if len(in.Entities.Files) == 0 {
		return ""
	}
	return " (files: " + strings.Join(in.Entities.Files, ", ") + ")"
}

func stack(in TemplateInput) string {
	if len(in.Entities.Technologies) == 0 {
		return ""
	}
	return " using " + strings.Join(in.Entities.Technologies, ", ")
}

// focus lists the extracted actions and targets, e.g.
// " (actions: fix, deploy; targets: server, payments)".
func focus(in TemplateInput) string {
	var parts []string
	if len(in.Entities.Actions) > 0 {
		parts = append(parts, "actions: "+strings.Join(in.Entities.Actions, ", "))
	}
	if len(in.Entities.Targets) > 0 {
		parts = append(parts, "targets: "+strings.Join(in.Entities.Targets, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}
