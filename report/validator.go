package report

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schema.json
var rawSchema []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.NewCompiler().Compile(rawSchema)
})

// ValidateSummary checks a persisted summary before it is loaded.
func ValidateSummary(summaryBytes []byte) []error {
	schema, err := compileSchema()
	if err != nil {
		return []error{fmt.Errorf("compile summary schema: %w", err)}
	}

	result := schema.Validate(summaryBytes)
	if result.IsValid() {
		return nil
	}
	errs := make([]error, 0, len(result.Errors))
	for keyword, evalErr := range result.Errors {
		errs = append(errs, fmt.Errorf("summary %s: %w", keyword, evalErr))
	}
	return errs
}
