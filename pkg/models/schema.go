package models

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// graphSchema constrains raw workflow graph definitions before they are
// persisted. Traversal helpers assume node data already passed this shape
// check plus NodeData.Validate.
var graphSchema = map[string]any{
	"type":     "object",
	"required": []any{"nodes", "edges"},
	"properties": map[string]any{
		"nodes": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "type"},
				"properties": map[string]any{
					"id":   map[string]any{"type": "string", "minLength": 1},
					"type": map[string]any{"type": "string", "enum": []any{"start", "end", "employee"}},
					"data": map[string]any{
						"type":     "object",
						"required": []any{"kind"},
						"properties": map[string]any{
							"kind":        map[string]any{"type": "string", "enum": []any{"single", "parallel"}},
							"employee_id": map[string]any{"type": "string"},
							"group_lead":  map[string]any{"type": "string"},
							"group_members": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
		"edges": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"source", "target"},
				"properties": map[string]any{
					"source": map[string]any{"type": "string", "minLength": 1},
					"target": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

// ValidateGraphDefinition validates a decoded workflow graph document against
// the graph schema and the per-node data rules.
func ValidateGraphDefinition(document map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(graphSchema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate graph definition: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("invalid graph definition: %s", strings.Join(descriptions, "; "))
	}

	return nil
}

// ValidateGraph applies the node data rules that the JSON schema cannot
// express, keyed on each employee node's discriminant.
func ValidateGraph(graph *WorkflowGraph) error {
	for _, node := range graph.Nodes {
		if node.Type != NodeTypeEmployee {
			continue
		}

		if node.Data == nil {
			return fmt.Errorf("employee node %s has no assignment data", node.ID)
		}

		if err := node.Data.Validate(); err != nil {
			return fmt.Errorf("employee node %s: %w", node.ID, err)
		}
	}

	return nil
}
