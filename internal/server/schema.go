package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request body schemas, compiled once at startup.
var (
	generativeAISchema = mustCompileSchema(`{
		"type": "object",
		"required": ["question"],
		"properties": {
			"question": {"type": "string", "minLength": 1}
		},
		"additionalProperties": false
	}`)

	chatSchema = mustCompileSchema(`{
		"type": "object",
		"required": ["human_input"],
		"properties": {
			"human_input": {"type": "string", "minLength": 1}
		},
		"additionalProperties": false
	}`)
)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return s
}

// validateBody checks the raw request body against a schema and
// returns a human-readable error listing every violation.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(problems, "; "))
}
