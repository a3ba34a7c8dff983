package pipeline

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rendis/agentflow/pkg/schema"
)

//go:embed presets.yaml
var presetsYAML []byte

var (
	presetsOnce sync.Once
	presets     []schema.PipelineDocument
	presetsErr  error
)

func loadPresets() ([]schema.PipelineDocument, error) {
	presetsOnce.Do(func() {
		if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
			presetsErr = fmt.Errorf("decode built-in presets: %w", err)
		}
	})
	return presets, presetsErr
}

// Presets returns the built-in pipelines as import documents. The returned
// slice is a copy.
func Presets() []schema.PipelineDocument {
	docs, err := loadPresets()
	if err != nil {
		panic(err)
	}
	out := make([]schema.PipelineDocument, len(docs))
	for i, d := range docs {
		out[i] = cloneDocument(d)
	}
	return out
}

// Preset returns one built-in pipeline by id.
func Preset(id string) (schema.PipelineDocument, error) {
	for _, d := range Presets() {
		if d.ID == id {
			return d, nil
		}
	}
	return schema.PipelineDocument{}, schema.NewErrorf(schema.ErrCodeNotFound, "preset %q not found", id)
}

func cloneDocument(d schema.PipelineDocument) schema.PipelineDocument {
	d.Nodes = append([]schema.DocumentNode(nil), d.Nodes...)
	d.Edges = append([]schema.DocumentEdge(nil), d.Edges...)
	return d
}
