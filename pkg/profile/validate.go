package profile

import (
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"

	schemasassets "github.com/printforge/slicerd/internal/assets/schemas"
)

// Cached validator instance (compiled once from the embedded schema).
var (
	validatorOnce sync.Once
	validator     *jsonschema.Schema
	validatorErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	validatorOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		validator, validatorErr = compiler.Compile(schemasassets.ProfileDocumentSchema)
	})
	if validatorErr != nil {
		return nil, fmt.Errorf("compile profile document schema: %w", validatorErr)
	}
	return validator, nil
}

// ValidateDocument checks that an upload is a JSON object whose metadata
// fields, where present, have the expected types. All other keys are
// accepted untouched; profile semantics stay the engine's business.
func ValidateDocument(data []byte) error {
	schema, err := documentSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidDocument, result.Errors)
}
