package catalog

import "github.com/rendis/agentflow/pkg/schema"

var builtinKinds = []Kind{
	// execution
	{ID: "executor-low", Label: "Executor (Low)", Category: CategoryExecution, Capability: CapExecute, DefaultModel: schema.ModelLow,
		Description: "Lightweight executor for single-file edits and small code changes."},
	{ID: "executor", Label: "Executor", Category: CategoryExecution, Capability: CapExecute, DefaultModel: schema.ModelMid,
		Description: "Core executor for feature work and bug fixes of moderate size."},
	{ID: "executor-high", Label: "Executor (High)", Category: CategoryExecution, Capability: CapExecute, DefaultModel: schema.ModelHigh,
		Description: "Senior executor for multi-file refactors and large feature implementations."},

	// analysis
	{ID: "architect-low", Label: "Architect (Low)", Category: CategoryAnalysis, Capability: CapAnalyze, DefaultModel: schema.ModelLow,
		Description: "Quick answers about code behaviour and single functions."},
	{ID: "architect-medium", Label: "Architect (Medium)", Category: CategoryAnalysis, Capability: CapAnalyze, DefaultModel: schema.ModelMid,
		Description: "Architecture review, debugging advice and design pattern analysis."},
	{ID: "architect", Label: "Architect", Category: CategoryAnalysis, Capability: CapAnalyze, DefaultModel: schema.ModelHigh,
		Description: "System-wide architecture, root-cause analysis of hard bugs and strategic technical decisions."},

	// search
	{ID: "explore", Label: "Explore", Category: CategorySearch, Capability: CapExplore, DefaultModel: schema.ModelLow,
		Description: "Fast file search, pattern matching and codebase layout discovery."},
	{ID: "explore-medium", Label: "Explore (Medium)", Category: CategorySearch, Capability: CapExplore, DefaultModel: schema.ModelMid,
		Description: "Code flow tracing and dependency analysis."},
	{ID: "explore-high", Label: "Explore (High)", Category: CategorySearch, Capability: CapExplore, DefaultModel: schema.ModelHigh,
		Description: "Whole-system architecture understanding and symbol reference tracing."},

	// research
	{ID: "researcher-low", Label: "Researcher (Low)", Category: CategoryResearch, Capability: CapResearch, DefaultModel: schema.ModelLow,
		Description: "Quick lookups of official documentation and API usage."},
	{ID: "researcher", Label: "Researcher", Category: CategoryResearch, Capability: CapResearch, DefaultModel: schema.ModelMid,
		Description: "External library documentation, API specification analysis and technology comparison."},

	// frontend
	{ID: "designer-low", Label: "Designer (Low)", Category: CategoryFrontend, Capability: CapDesign, DefaultModel: schema.ModelLow,
		Description: "Small style tweaks such as colors, margins and padding."},
	{ID: "designer", Label: "Designer", Category: CategoryFrontend, Capability: CapDesign, DefaultModel: schema.ModelMid,
		Description: "Component design, responsive layout and user-facing UI implementation."},
	{ID: "designer-high", Label: "Designer (High)", Category: CategoryFrontend, Capability: CapDesign, DefaultModel: schema.ModelHigh,
		Description: "Design systems, complex UI architecture and interaction design."},

	// testing
	{ID: "qa-tester", Label: "QA Tester", Category: CategoryTesting, Capability: CapTest, DefaultModel: schema.ModelMid,
		Description: "Interactive CLI testing and scenario-based verification."},
	{ID: "qa-tester-high", Label: "QA Tester (High)", Category: CategoryTesting, Capability: CapTest, DefaultModel: schema.ModelHigh,
		Description: "Production-grade QA, edge case discovery and regression testing."},
	{ID: "tdd-guide", Label: "TDD Guide", Category: CategoryTesting, Capability: CapTest, DefaultModel: schema.ModelMid,
		Description: "Test-first guidance aiming for 80%+ coverage."},
	{ID: "tdd-guide-low", Label: "TDD Guide (Low)", Category: CategoryTesting, Capability: CapTest, DefaultModel: schema.ModelLow,
		Description: "Quick test case suggestions and unit test ideas."},

	// security
	{ID: "security-reviewer", Label: "Security Reviewer", Category: CategorySecurity, Capability: CapSecure, DefaultModel: schema.ModelHigh,
		Description: "OWASP Top 10 detection, authn/authz flaw analysis and in-depth security review."},
	{ID: "security-reviewer-low", Label: "Security Reviewer (Low)", Category: CategorySecurity, Capability: CapSecure, DefaultModel: schema.ModelLow,
		Description: "Hardcoded secret detection and basic vulnerability scans."},

	// build
	{ID: "build-fixer", Label: "Build Fixer", Category: CategoryBuild, Capability: CapBuild, DefaultModel: schema.ModelMid,
		Description: "Resolves compile errors, type errors and build failures with minimal changes."},
	{ID: "build-fixer-low", Label: "Build Fixer (Low)", Category: CategoryBuild, Capability: CapBuild, DefaultModel: schema.ModelLow,
		Description: "Fixes trivial build errors such as missing imports."},

	// review
	{ID: "code-reviewer", Label: "Code Reviewer", Category: CategoryReview, Capability: CapReview, DefaultModel: schema.ModelHigh,
		Description: "Reviews quality, security, maintainability and performance with severity-rated feedback."},
	{ID: "code-reviewer-low", Label: "Code Reviewer (Low)", Category: CategoryReview, Capability: CapReview, DefaultModel: schema.ModelLow,
		Description: "Fast quality check of small changes."},
	{ID: "critic", Label: "Critic", Category: CategoryReview, Capability: CapCritique, DefaultModel: schema.ModelHigh,
		Description: "Points out logical gaps, missing requirements and risks in a plan."},

	// planning
	{ID: "planner", Label: "Planner", Category: CategoryPlanning, Capability: CapPlan, DefaultModel: schema.ModelHigh,
		Description: "Turns requirements into a step-by-step implementation strategy."},
	{ID: "analyst", Label: "Analyst", Category: CategoryPlanning, Capability: CapPlan, DefaultModel: schema.ModelHigh,
		Description: "Pre-planning requirements analysis, constraints and feasibility review."},

	// docs
	{ID: "writer", Label: "Writer", Category: CategoryDocs, Capability: CapDocument, DefaultModel: schema.ModelLow,
		Description: "Writes READMEs, API documentation and code comments."},

	// visual
	{ID: "vision", Label: "Vision", Category: CategoryVisual, Capability: CapVision, DefaultModel: schema.ModelMid,
		Description: "Interprets images, PDFs and diagrams."},

	// data
	{ID: "scientist-low", Label: "Scientist (Low)", Category: CategoryData, Capability: CapAnalyzeData, DefaultModel: schema.ModelLow,
		Description: "Quick data lookups, simple statistics and CSV previews."},
	{ID: "scientist", Label: "Scientist", Category: CategoryData, Capability: CapAnalyzeData, DefaultModel: schema.ModelMid,
		Description: "Data analysis, visualization, statistics and experiments."},
	{ID: "scientist-high", Label: "Scientist (High)", Category: CategoryData, Capability: CapAnalyzeData, DefaultModel: schema.ModelHigh,
		Description: "Hypothesis testing, machine learning model analysis and large research designs."},
}
