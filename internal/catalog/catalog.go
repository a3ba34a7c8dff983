// Package catalog is the closed set of agent kinds a pipeline node can carry.
package catalog

import (
	"sort"

	"github.com/rendis/agentflow/pkg/schema"
)

// Category groups agent kinds by area of work.
type Category string

const (
	CategoryExecution Category = "execution"
	CategoryAnalysis  Category = "analysis"
	CategorySearch    Category = "search"
	CategoryResearch  Category = "research"
	CategoryFrontend  Category = "frontend"
	CategoryTesting   Category = "testing"
	CategorySecurity  Category = "security"
	CategoryBuild     Category = "build"
	CategoryReview    Category = "review"
	CategoryPlanning  Category = "planning"
	CategoryDocs      Category = "docs"
	CategoryVisual    Category = "visual"
	CategoryData      Category = "data"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryExecution, CategoryAnalysis, CategorySearch, CategoryResearch,
	CategoryFrontend, CategoryTesting, CategorySecurity, CategoryBuild,
	CategoryReview, CategoryPlanning, CategoryDocs, CategoryVisual, CategoryData,
}

// Capability is the behavioural variant of an agent kind. Prompt templates
// and simulated outputs dispatch on it rather than on the kind name.
type Capability string

const (
	CapExplore     Capability = "explore"
	CapResearch    Capability = "research"
	CapAnalyze     Capability = "analyze"
	CapPlan        Capability = "plan"
	CapDesign      Capability = "design"
	CapExecute     Capability = "execute"
	CapBuild       Capability = "build"
	CapReview      Capability = "review"
	CapCritique    Capability = "critique"
	CapTest        Capability = "test"
	CapSecure      Capability = "secure"
	CapDocument    Capability = "document"
	CapVision      Capability = "vision"
	CapAnalyzeData Capability = "analyze-data"
)

// Kind is the declared record for one agent kind.
type Kind struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Category     Category         `json:"category"`
	Capability   Capability       `json:"capability"`
	DefaultModel schema.ModelTier `json:"defaultModel"`
	Description  string           `json:"description"`
}

// Catalog is an immutable, ordered set of agent kinds.
type Catalog struct {
	kinds []Kind
	index map[string]int
}

// New builds a catalog from kind records. Later duplicates are ignored.
func New(kinds []Kind) *Catalog {
	c := &Catalog{index: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		if _, dup := c.index[k.ID]; dup || k.ID == "" {
			continue
		}
		c.index[k.ID] = len(c.kinds)
		c.kinds = append(c.kinds, k)
	}
	return c
}

// Get retrieves a kind by id.
func (c *Catalog) Get(id string) (Kind, error) {
	i, ok := c.index[id]
	if !ok {
		return Kind{}, schema.NewErrorf(schema.ErrCodeNotFound, "agent type %q not in catalog", id)
	}
	return c.kinds[i], nil
}

// Has checks if a kind is declared.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Count returns the number of declared kinds.
func (c *Catalog) Count() int {
	return len(c.kinds)
}

// List returns all kinds in declaration order.
func (c *Catalog) List() []Kind {
	out := make([]Kind, len(c.kinds))
	copy(out, c.kinds)
	return out
}

// ByCategory returns the kinds of one category, sorted by id.
func (c *Catalog) ByCategory(cat Category) []Kind {
	var out []Kind
	for _, k := range c.kinds {
		if k.Category == cat {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CapabilityOf returns the capability of a kind, or "" if it is unknown.
func (c *Catalog) CapabilityOf(id string) Capability {
	if i, ok := c.index[id]; ok {
		return c.kinds[i].Capability
	}
	return ""
}

var defaultCatalog = New(builtinKinds)

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}
