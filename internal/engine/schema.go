package engine

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const responseSchemaURL = "schema://qperformance/engine-response.json"

// responseSchema describes the document an external engine writes to stdout.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"warnings": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"report": map[string]any{"type": "string"},
	},
	"required": []any{"report"},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiledResponseSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(responseSchemaURL, responseSchema); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(responseSchemaURL)
	})
	return compiledSchema, compileErr
}

// decodeResponse validates raw against the response schema and decodes it.
// Failures are returned as *ErrInvalidOutput.
func decodeResponse(raw []byte) (*Result, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidOutput{Output: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := compiledResponseSchema()
	if err != nil {
		return nil, &ErrInvalidOutput{Output: raw, Err: fmt.Errorf("compile response schema: %w", err)}
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, &ErrInvalidOutput{Output: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var resp struct {
		Warnings []string `json:"warnings"`
		Report   string   `json:"report"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ErrInvalidOutput{Output: raw, Err: err}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return &Result{Warnings: resp.Warnings, Report: resp.Report}, nil
}
