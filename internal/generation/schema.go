package generation

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed templates/questions.schema.json
var questionsSchemaJSON []byte

const questionsSchemaURL = "schema://questions.json"

var (
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
	compileSchemaOnce sync.Once
)

// questionsSchema returns the compiled response schema, compiling it on first use.
func questionsSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(questionsSchemaJSON))
		if err != nil {
			compiledSchemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(questionsSchemaURL, doc); err != nil {
			compiledSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(questionsSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// validatePayload checks a decoded-candidate JSON payload against the schema.
func validatePayload(payload []byte) error {
	schema, err := questionsSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
