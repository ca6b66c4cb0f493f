package stubfile

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ValidationError lists every schema violation found in a stub file.
type ValidationError struct {
	Problems []Problem
}

// Problem is one schema violation. Location is a JSON pointer into the file.
type Problem struct {
	Location string
	Message  string
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid stub file: " + strings.Join(parts, "; ")
}

func (p Problem) String() string {
	loc := p.Location
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + p.Message
}

// Schema returns the JSON Schema stub files are validated against.
func Schema() string {
	return schemaJSON
}

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("stubfile.schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("stubfile.schema.json")
	})
	return compiledSchema, schemaErr
}

// validate checks a normalized document against the schema.
func validate(v any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	err = schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{}
	collectProblems(ve, &out.Problems)
	return out
}

// collectProblems flattens the cause tree into its leaves.
func collectProblems(ve *jsonschema.ValidationError, into *[]Problem) {
	if len(ve.Causes) == 0 {
		*into = append(*into, Problem{Location: ve.InstanceLocation, Message: ve.Message})
		return
	}
	for _, c := range ve.Causes {
		collectProblems(c, into)
	}
}
