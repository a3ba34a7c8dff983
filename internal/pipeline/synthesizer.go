// Package pipeline assembles agent graphs from free task text and holds the
// built-in preset pipelines.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rendis/agentflow/internal/analysis"
	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/internal/expressions"
	"github.com/rendis/agentflow/internal/identity"
	"github.com/rendis/agentflow/pkg/schema"
)

// DefaultName names a synthesized graph when the caller gives none.
const DefaultName = "Generated Pipeline"

const defaultSummaryLength = 80

// Synthesizer turns task text into a phased agent graph. It is safe for
// concurrent use; all per-call state lives on the stack.
type Synthesizer struct {
	rules      []Rule
	catalog    *catalog.Catalog
	engine     *expressions.ExprEngine
	summaryLen int
	logger     *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRules replaces the built-in rule set.
func WithRules(rules []Rule) Option {
	return func(s *Synthesizer) { s.rules = rules }
}

// WithCatalog sets the agent catalog used for models and capabilities.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Synthesizer) { s.catalog = c }
}

// WithSummaryLength caps the first-sentence summary used in instructions.
func WithSummaryLength(n int) Option {
	return func(s *Synthesizer) { s.summaryLen = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// NewSynthesizer creates a synthesizer and checks every rule: expressions
// must compile, phases must be known and After must name an earlier rule of
// the same phase.
func NewSynthesizer(opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{
		rules:      DefaultRules(),
		catalog:    catalog.Default(),
		engine:     expressions.NewExprEngine(),
		summaryLen: defaultSummaryLength,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := s.checkRules(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Synthesizer) checkRules() error {
	env := analysis.Analyze("").Env()
	seen := map[string]schema.Phase{}
	known := map[schema.Phase]bool{}
	for _, p := range phaseOrder {
		known[p] = true
	}

	for i, r := range s.rules {
		path := fmt.Sprintf("rules[%d]", i)
		if r.Name == "" {
			return schema.NewErrorf(schema.ErrCodeValidation, "%s: name is required", path)
		}
		if _, dup := seen[r.Name]; dup {
			return schema.NewErrorf(schema.ErrCodeValidation, "%s: duplicate rule %q", path, r.Name)
		}
		if !known[r.Phase] {
			return schema.NewErrorf(schema.ErrCodeValidation, "%s: unknown phase %q", path, r.Phase)
		}
		if r.After != "" && seen[r.After] != r.Phase {
			return schema.NewErrorf(schema.ErrCodeValidation,
				"%s: after %q must name an earlier rule of phase %s", path, r.After, r.Phase)
		}
		if r.Model != "" && !r.Model.Valid() {
			return schema.NewErrorf(schema.ErrCodeValidation, "%s: invalid model %q", path, r.Model)
		}
		if r.Kind == "" {
			return schema.NewErrorf(schema.ErrCodeValidation, "%s: kind is required", path)
		}
		if r.When != "" {
			if _, err := s.engine.Evaluate(context.Background(), r.When, env); err != nil {
				return fmt.Errorf("%s when: %w", path, err)
			}
		}
		if _, err := s.engine.Evaluate(context.Background(), r.Kind, env); err != nil {
			return fmt.Errorf("%s kind: %w", path, err)
		}
		seen[r.Name] = r.Phase
	}
	return nil
}

// Synthesize classifies text and assembles the graph. It never fails: text
// that matches no rule yields the canonical four-node chain.
func (s *Synthesizer) Synthesize(gen identity.Generator, text, name string) (*schema.Graph, *analysis.Result) {
	res := analysis.Analyze(text)
	if name == "" {
		name = DefaultName
	}

	if res.Empty() {
		s.logger.Debug("no category matched, using fallback chain")
		return s.fallback(gen, name), res
	}

	b := &builder{gen: gen, graph: &schema.Graph{
		Name:        name,
		Description: fmt.Sprintf("%s / %s complexity", res.TaskType, res.Complexity),
	}}
	env := res.Env()
	entities := analysis.Extract(text)
	summary := analysis.Summarize(text, s.summaryLen)

	var prevLeaves []string
	var prevPhase schema.Phase
	for _, phase := range phaseOrder {
		byName := map[string]string{}
		var phaseNodes []string
		hasChild := map[string]bool{}

		for _, r := range s.rules {
			if r.Phase != phase {
				continue
			}
			kind, ok := s.resolve(r, env)
			if !ok {
				continue
			}

			subject := summary
			if r.Context != "" {
				if ctx := analysis.Context(text, r.Context); ctx != "" {
					subject = ctx
				}
			}
			in := TemplateInput{
				Kind:       kind,
				Phase:      phase,
				Category:   r.Context,
				Subject:    subject,
				Entities:   entities,
				Complexity: res.Complexity,
			}
			id := b.addNode(s.node(kind, r.Model, phase, Template(s.catalog.CapabilityOf(kind), phase)(in)))
			byName[r.Name] = id
			phaseNodes = append(phaseNodes, id)

			if parent, ok := byName[r.After]; ok && r.After != "" {
				b.addEdge(parent, id, phaseOutputLabels[phase])
				hasChild[parent] = true
				continue
			}
			for _, src := range prevLeaves {
				b.addEdge(src, id, phaseOutputLabels[prevPhase])
			}
		}

		if len(phaseNodes) == 0 {
			continue
		}
		prevLeaves = nil
		for _, id := range phaseNodes {
			if !hasChild[id] {
				prevLeaves = append(prevLeaves, id)
			}
		}
		prevPhase = phase
	}

	s.logger.Debug("pipeline synthesized",
		slog.String("task_type", string(res.TaskType)),
		slog.String("complexity", string(res.Complexity)),
		slog.Int("nodes", len(b.graph.Nodes)),
		slog.Int("edges", len(b.graph.Edges)),
	)
	return b.graph, res
}

// resolve evaluates a rule's gate and kind selector.
func (s *Synthesizer) resolve(r Rule, env map[string]any) (string, bool) {
	ctx := context.Background()
	if r.When != "" {
		fire, err := expressions.EvaluateBool(ctx, s.engine, r.When, env)
		if err != nil {
			s.logger.Warn("rule gate failed", slog.String("rule", r.Name), slog.String("error", err.Error()))
			return "", false
		}
		if !fire {
			return "", false
		}
	}
	kind, err := expressions.EvaluateString(ctx, s.engine, r.Kind, env)
	if err != nil {
		s.logger.Warn("rule kind failed", slog.String("rule", r.Name), slog.String("error", err.Error()))
		return "", false
	}
	if !s.catalog.Has(kind) {
		s.logger.Warn("rule selected unknown agent type", slog.String("rule", r.Name), slog.String("kind", kind))
		return "", false
	}
	return kind, true
}

func (s *Synthesizer) node(kind string, model schema.ModelTier, phase schema.Phase, instruction string) schema.AgentNode {
	n := schema.AgentNode{Kind: kind, Model: model, Phase: phase, Instruction: instruction}
	if k, err := s.catalog.Get(kind); err == nil {
		if n.Model == "" {
			n.Model = k.DefaultModel
		}
		n.Category = string(k.Category)
		n.Label = k.Label
		n.Description = k.Description
	}
	if n.Model == "" {
		n.Model = schema.ModelMid
	}
	return n
}

func (s *Synthesizer) fallback(gen identity.Generator, name string) *schema.Graph {
	b := &builder{gen: gen, graph: &schema.Graph{Name: name, Description: "Default pipeline"}}
	prev := ""
	for _, step := range fallbackChain {
		id := b.addNode(s.node(step.kind, "", step.phase, step.instruction))
		if prev != "" {
			b.addEdge(prev, id, "")
		}
		prev = id
	}
	return b.graph
}

type builder struct {
	gen   identity.Generator
	graph *schema.Graph
	seen  map[[2]string]bool
}

func (b *builder) addNode(n schema.AgentNode) string {
	n.ID = b.gen.NodeID()
	b.graph.Nodes = append(b.graph.Nodes, n)
	return n.ID
}

// addEdge ignores repeated source/target pairs.
func (b *builder) addEdge(source, target, label string) {
	if b.seen == nil {
		b.seen = map[[2]string]bool{}
	}
	key := [2]string{source, target}
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.graph.Edges = append(b.graph.Edges, schema.Edge{
		ID: b.gen.EdgeID(), Source: source, Target: target, Label: label,
	})
}
