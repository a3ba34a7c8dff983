package pipeline

import (
	"github.com/rendis/agentflow/internal/analysis"
	"github.com/rendis/agentflow/pkg/schema"
)

// Rule declares one candidate node of a synthesized pipeline.
//
// When and Kind are expr-lang expressions evaluated against the analysis
// environment (flags, complexity, taskType, scores). An empty When always
// fires. Kind must yield a catalog agent id.
//
// Nodes of one phase are independent of each other unless After names the
// rule they hang off. Nodes without a present parent are fed from every leaf
// of the previous non-empty phase.
type Rule struct {
	Name    string
	Phase   schema.Phase
	When    string
	Kind    string
	Model   schema.ModelTier
	After   string
	Context string
}

var phaseOrder = []schema.Phase{
	schema.PhaseDiscovery,
	schema.PhasePlanning,
	schema.PhaseImplementation,
	schema.PhaseVerification,
	schema.PhaseReview,
}

var phaseOutputLabels = map[schema.Phase]string{
	schema.PhaseDiscovery:      "discovery findings",
	schema.PhasePlanning:       "implementation plan",
	schema.PhaseImplementation: "code changes",
	schema.PhaseVerification:   "verification report",
	schema.PhaseReview:         "review notes",
}

const (
	isHigh = `complexity == "high"`
	ifHigh = `complexity == "high" ? `
)

// DefaultRules is the built-in discovery, plan, implement, verify, review
// workflow.
func DefaultRules() []Rule {
	return []Rule{
		// discovery
		{Name: "explore", Phase: schema.PhaseDiscovery,
			When:    `flags.explore || complexity != "low"`,
			Kind:    ifHigh + `"explore-high" : "explore"`,
			Context: analysis.CatExplore},
		{Name: "research", Phase: schema.PhaseDiscovery,
			When:    `flags.research`,
			Kind:    `"researcher"`,
			Context: analysis.CatResearch},
		{Name: "data", Phase: schema.PhaseDiscovery,
			When:    `flags.data`,
			Kind:    ifHigh + `"scientist-high" : "scientist"`,
			Context: analysis.CatData},

		// planning
		{Name: "requirements", Phase: schema.PhasePlanning,
			When:    isHigh,
			Kind:    `"analyst"`,
			Context: analysis.CatComplex},
		{Name: "design", Phase: schema.PhasePlanning,
			When:    isHigh,
			Kind:    `"architect"`,
			After:   "requirements",
			Context: analysis.CatComplex},
		{Name: "design-review", Phase: schema.PhasePlanning,
			When:    `complexity == "medium"`,
			Kind:    `"architect-medium"`,
			Context: analysis.CatExplore},

		// implementation
		{Name: "bugfix", Phase: schema.PhaseImplementation,
			When:    `taskType == "bugfix"`,
			Kind:    ifHigh + `"executor-high" : "executor"`,
			Context: analysis.CatBugfix},
		{Name: "backend", Phase: schema.PhaseImplementation,
			When:    `taskType == "fullstack"`,
			Kind:    `"executor"`,
			Model:   schema.ModelMid,
			Context: analysis.CatBackend},
		{Name: "frontend", Phase: schema.PhaseImplementation,
			When:    `taskType == "fullstack"`,
			Kind:    `flags.design ? "designer" : "executor"`,
			Model:   schema.ModelMid,
			Context: analysis.CatFrontend},
		{Name: "ui", Phase: schema.PhaseImplementation,
			When:    `taskType == "frontend"`,
			Kind:    ifHigh + `"designer-high" : "designer"`,
			Context: analysis.CatFrontend},
		{Name: "data-processing", Phase: schema.PhaseImplementation,
			When:    `taskType == "data"`,
			Kind:    ifHigh + `"scientist-high" : "scientist"`,
			Context: analysis.CatData},
		{Name: "hardening", Phase: schema.PhaseImplementation,
			When:    `taskType == "security"`,
			Kind:    `"executor"`,
			Context: analysis.CatSecurity},
		{Name: "refactor", Phase: schema.PhaseImplementation,
			When:    `taskType == "refactor"`,
			Kind:    ifHigh + `"executor-high" : "executor"`,
			Context: analysis.CatRefactor},
		{Name: "core", Phase: schema.PhaseImplementation,
			When:    `taskType not in ["bugfix", "fullstack", "frontend", "data", "security", "refactor"]`,
			Kind:    ifHigh + `"executor-high" : "executor"`,
			Context: analysis.CatExplore},

		// verification
		{Name: "build", Phase: schema.PhaseVerification,
			Kind: ifHigh + `"build-fixer" : "build-fixer-low"`},
		{Name: "security-review", Phase: schema.PhaseVerification,
			When:    `flags.security`,
			Kind:    ifHigh + `"security-reviewer" : "security-reviewer-low"`,
			After:   "build",
			Context: analysis.CatSecurity},
		{Name: "tests", Phase: schema.PhaseVerification,
			When:    `flags.test`,
			Kind:    ifHigh + `"qa-tester-high" : "tdd-guide"`,
			After:   "build",
			Context: analysis.CatTest},

		// review
		{Name: "final-review", Phase: schema.PhaseReview,
			Kind: ifHigh + `"architect" : "architect-low"`},
		{Name: "docs", Phase: schema.PhaseReview,
			When:    `flags.docs`,
			Kind:    `"writer"`,
			After:   "final-review",
			Context: analysis.CatDocs},
	}
}

// fallbackChain is used when the text matched no rule at all.
var fallbackChain = []struct {
	kind        string
	phase       schema.Phase
	instruction string
}{
	{"explore", schema.PhaseDiscovery, "Map the project structure"},
	{"architect-medium", schema.PhasePlanning, "Decide the design and implementation direction"},
	{"executor", schema.PhaseImplementation, "Implement the feature"},
	{"build-fixer-low", schema.PhaseVerification, "Check the build"},
}
