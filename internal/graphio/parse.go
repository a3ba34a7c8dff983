// Package graphio reads pipeline documents and turns them into graphs the
// scheduler can consume.
package graphio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rendis/agentflow/internal/validation"
	"github.com/rendis/agentflow/pkg/schema"
)

var (
	validatorOnce sync.Once
	validator     *validation.DocumentValidator
	validatorErr  error
)

func documentValidator() (*validation.DocumentValidator, error) {
	validatorOnce.Do(func() {
		validator, validatorErr = validation.NewDocumentValidator()
	})
	return validator, validatorErr
}

// Parse decodes a pipeline document from JSON or YAML and checks it against
// the import schema. Text wrapping a JSON object, such as a fenced block in a
// model response, is accepted as long as the object itself is well formed.
func Parse(data []byte) (*schema.PipelineDocument, error) {
	raw, err := toJSON(data)
	if err != nil {
		return nil, err
	}

	v, err := documentValidator()
	if err != nil {
		return nil, fmt.Errorf("init document validator: %w", err)
	}
	if err := v.ValidateJSON(raw); err != nil {
		return nil, err
	}

	var doc schema.PipelineDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, schema.NewError(schema.ErrCodeImport, "decode pipeline document").WithCause(err)
	}
	return &doc, nil
}

// toJSON normalizes the input to JSON bytes. A YAML mapping without a nodes
// key loses to an embedded JSON object when one is present.
func toJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, schema.NewError(schema.ErrCodeImport, "empty document")
	}

	if trimmed[0] == '{' && json.Valid(trimmed) {
		return trimmed, nil
	}

	var value any
	yamlErr := yaml.Unmarshal(trimmed, &value)
	m, isMap := value.(map[string]any)
	if yamlErr == nil && isMap && hasNodes(m) {
		return fromYAML(m)
	}

	if block, ok := extractObject(trimmed); ok && json.Valid(block) {
		return block, nil
	}

	switch {
	case yamlErr != nil:
		return nil, schema.NewError(schema.ErrCodeImport, "document is neither JSON nor YAML").WithCause(yamlErr)
	case isMap:
		return fromYAML(m)
	default:
		return nil, schema.NewError(schema.ErrCodeImport, "document must be an object with a nodes list")
	}
}

func fromYAML(m map[string]any) ([]byte, error) {
	out, err := json.Marshal(m)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeImport, "convert YAML document").WithCause(err)
	}
	return out, nil
}

func hasNodes(m map[string]any) bool {
	_, ok := m["nodes"]
	return ok
}

// extractObject returns the span from the first '{' to the last '}'.
func extractObject(data []byte) ([]byte, bool) {
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	return data[start : end+1], true
}
