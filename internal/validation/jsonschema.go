package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/agentflow/pkg/schema"
)

const documentSchemaURL = "https://agentflow.dev/schemas/pipeline.json"

// documentSchemaJSON describes an importable pipeline document. Edge indices
// are only typed here; range and self-loop checks happen during import so bad
// edges can be dropped with a warning instead of rejecting the document.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://agentflow.dev/schemas/pipeline.json",
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "id": { "type": "string" },
    "name": { "type": "string" },
    "description": { "type": "string" },
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["agentType"],
      "properties": {
        "id": { "type": "string" },
        "name": { "type": "string" },
        "agentType": { "type": "string", "minLength": 1 },
        "model": { "type": "string" },
        "prompt": { "type": "string" }
      }
    },
    "edge": {
      "oneOf": [
        {
          "type": "array",
          "minItems": 2,
          "maxItems": 2,
          "items": { "type": "integer" }
        },
        {
          "type": "object",
          "required": ["source", "target"],
          "properties": {
            "source": { "type": "integer" },
            "target": { "type": "integer" },
            "label": { "type": "string" }
          },
          "additionalProperties": false
        }
      ]
    }
  }
}`

// DocumentValidator checks raw pipeline documents against the import schema
// (JSON Schema Draft 2020-12). It is safe for concurrent use.
type DocumentValidator struct {
	documentSchema *jsonschema.Schema
}

// NewDocumentValidator creates a DocumentValidator with the pipeline schema pre-compiled.
func NewDocumentValidator() (*DocumentValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal pipeline schema: %w", err)
	}
	if err := c.AddResource(documentSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add pipeline schema resource: %w", err)
	}

	compiled, err := c.Compile(documentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile pipeline schema: %w", err)
	}
	return &DocumentValidator{documentSchema: compiled}, nil
}

// ValidateJSON validates a JSON-encoded pipeline document.
func (v *DocumentValidator) ValidateJSON(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return schema.NewError(schema.ErrCodeImport, "document is not valid JSON").WithCause(err)
	}
	if err := v.documentSchema.Validate(doc); err != nil {
		return toFlowError(err)
	}
	return nil
}

// ValidateDocument validates an already decoded document.
func (v *DocumentValidator) ValidateDocument(doc *schema.PipelineDocument) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "pipeline document is nil")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize pipeline document").WithCause(err)
	}
	return v.ValidateJSON(data)
}

// toFlowError converts a jsonschema.ValidationError into a FlowError listing
// every leaf violation with its instance location.
func toFlowError(err error) *schema.FlowError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
