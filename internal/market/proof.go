package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ProofValidator checks worker proof payloads against the JSON schema of the
// task's category. Schemas live one file per category in schemaDir
// (social_share.json, app_review.json, ...).
type ProofValidator struct {
	schemas map[string]*jsonschema.Schema
}

// NewProofValidator loads and compiles all *.json schemas from schemaDir.
func NewProofValidator(schemaDir string) (*ProofValidator, error) {
	entries, err := os.ReadDir(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	v := &ProofValidator{schemas: make(map[string]*jsonschema.Schema)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		category := strings.TrimSuffix(e.Name(), ".json")
		path := filepath.Join(schemaDir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", path, err)
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(e.Name(), bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", path, err)
		}
		schema, err := compiler.Compile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		v.schemas[category] = schema
	}
	if len(v.schemas) == 0 {
		return nil, fmt.Errorf("no schemas found in %s", schemaDir)
	}
	return v, nil
}

// Known reports whether the category has a registered proof schema.
func (v *ProofValidator) Known(category string) bool {
	_, ok := v.schemas[category]
	return ok
}

// Validate checks the proof payload against the category schema. A schema
// violation surfaces as ErrInvalidProof so callers can hard-reject it.
func (v *ProofValidator) Validate(category string, proof json.RawMessage) error {
	schema, ok := v.schemas[category]
	if !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	if len(proof) == 0 {
		return fmt.Errorf("%w: proof is required", ErrInvalidProof)
	}
	var doc any
	if err := json.Unmarshal(proof, &doc); err != nil {
		return fmt.Errorf("%w: proof is not valid JSON", ErrInvalidProof)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return nil
}
