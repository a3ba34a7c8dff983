package graphio

import (
	"fmt"
	"strings"

	"github.com/rendis/agentflow/internal/catalog"
	"github.com/rendis/agentflow/internal/identity"
	"github.com/rendis/agentflow/internal/validation"
	"github.com/rendis/agentflow/pkg/schema"
)

// DefaultName names an imported graph whose document carries none.
const DefaultName = "Imported Pipeline"

// FallbackKind replaces an unknown agent type that resembles no catalog entry.
const FallbackKind = "executor"

// Importer materializes documents against a catalog.
type Importer struct {
	catalog *catalog.Catalog
}

// NewImporter creates an importer. A nil catalog means the built-in one.
func NewImporter(cat *catalog.Catalog) *Importer {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Importer{catalog: cat}
}

// Materialize builds a graph from a document. Recoverable problems (unknown
// agent types, bad models, out-of-range or self-referencing edges, duplicate
// ids) are repaired and reported as warnings; the graph validator's findings
// are merged into the same result. An error is returned only when nothing usable
// can be built.
func (im *Importer) Materialize(gen identity.Generator, doc *schema.PipelineDocument) (*schema.Graph, *schema.ValidationResult, error) {
	if doc == nil {
		return nil, nil, schema.NewError(schema.ErrCodeImport, "pipeline document is nil")
	}
	if len(doc.Nodes) == 0 {
		return nil, nil, schema.NewError(schema.ErrCodeImport, "pipeline document has no nodes")
	}

	result := &schema.ValidationResult{}
	g := &schema.Graph{Name: doc.Name, Description: doc.Description}
	if strings.TrimSpace(g.Name) == "" {
		g.Name = DefaultName
	}

	ids := make([]string, len(doc.Nodes))
	used := make(map[string]bool, len(doc.Nodes))
	for i, dn := range doc.Nodes {
		n := im.node(i, dn, result)

		n.ID = dn.ID
		if n.ID != "" && used[n.ID] {
			result.AddWarning(fmt.Sprintf("nodes[%d].id", i), schema.ErrCodeImport,
				fmt.Sprintf("duplicate node id %q replaced", n.ID))
			n.ID = ""
		}
		for n.ID == "" || used[n.ID] {
			n.ID = gen.NodeID()
		}
		used[n.ID] = true
		ids[i] = n.ID
		g.Nodes = append(g.Nodes, n)
	}

	seen := make(map[[2]int]bool, len(doc.Edges))
	g.Edges = []schema.Edge{}
	for i, de := range doc.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		switch {
		case de.Source < 0 || de.Source >= len(ids) || de.Target < 0 || de.Target >= len(ids):
			result.AddWarning(path, schema.ErrCodeImport,
				fmt.Sprintf("edge [%d, %d] is out of range for %d nodes and was dropped", de.Source, de.Target, len(ids)))
			continue
		case de.Source == de.Target:
			result.AddWarning(path, schema.ErrCodeImport,
				fmt.Sprintf("edge [%d, %d] points at its own source and was dropped", de.Source, de.Target))
			continue
		case seen[[2]int{de.Source, de.Target}]:
			result.AddWarning(path, schema.ErrCodeImport,
				fmt.Sprintf("duplicate edge [%d, %d] was dropped", de.Source, de.Target))
			continue
		}
		seen[[2]int{de.Source, de.Target}] = true
		g.Edges = append(g.Edges, schema.Edge{
			ID:     gen.EdgeID(),
			Source: ids[de.Source],
			Target: ids[de.Target],
			Label:  de.Label,
		})
	}

	result.Merge(validation.NewGraphValidator(im.catalog).Validate(g))
	return g, result, nil
}

// node resolves kind and model and fills the remaining fields from the catalog.
func (im *Importer) node(i int, dn schema.DocumentNode, result *schema.ValidationResult) schema.AgentNode {
	path := fmt.Sprintf("nodes[%d]", i)

	kind := im.resolveKind(dn.AgentType)
	if kind != dn.AgentType {
		result.AddWarning(path+".agentType", schema.ErrCodeImport,
			fmt.Sprintf("unknown agent type %q replaced with %q", dn.AgentType, kind))
	}
	def, _ := im.catalog.Get(kind)

	model := def.DefaultModel
	if dn.Model != "" {
		if m, ok := schema.ParseModelTier(dn.Model); ok {
			model = m
		} else {
			result.AddWarning(path+".model", schema.ErrCodeImport,
				fmt.Sprintf("unknown model %q, using %q", dn.Model, model))
		}
	}
	if model == "" {
		model = schema.ModelMid
	}

	label := dn.Name
	if label == "" {
		label = def.Label
	}
	if label == "" {
		label = kind
	}

	return schema.AgentNode{
		Kind:        kind,
		Model:       model,
		Instruction: dn.Prompt,
		Category:    string(def.Category),
		Label:       label,
		Description: def.Description,
	}
}

// resolveKind returns the agent type unchanged when declared. Otherwise the
// first catalog id that contains it, or is contained by it, wins; with no
// such id the fallback kind is used.
func (im *Importer) resolveKind(agentType string) string {
	if im.catalog.Has(agentType) {
		return agentType
	}
	if agentType != "" {
		for _, k := range im.catalog.List() {
			if strings.Contains(k.ID, agentType) || strings.Contains(agentType, k.ID) {
				return k.ID
			}
		}
	}
	return FallbackKind
}

var defaultImporter = NewImporter(nil)

// Materialize builds a graph with the built-in catalog.
func Materialize(gen identity.Generator, doc *schema.PipelineDocument) (*schema.Graph, *schema.ValidationResult, error) {
	return defaultImporter.Materialize(gen, doc)
}

// Import parses and materializes a document with the built-in catalog.
func Import(gen identity.Generator, data []byte) (*schema.Graph, *schema.ValidationResult, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return Materialize(gen, doc)
}
