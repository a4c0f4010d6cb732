// Package validation checks package metadata against registered JSON schemas.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roundcube/skin-installer/registry"
	"github.com/roundcube/skin-installer/skin/entities"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExtraValidator validates extra.roundcube with the schema registered
// under entities.ExtraKey.
type ExtraValidator struct {
	registry registry.SchemaRegistry

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewExtraValidator creates a validator reading schemas from reg.
func NewExtraValidator(reg registry.SchemaRegistry) *ExtraValidator {
	return &ExtraValidator{
		registry: reg,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate implements PackageValidator. A package without the block is valid.
func (v *ExtraValidator) Validate(pkg *entities.Package) (*ValidationResult, error) {
	raw, ok := pkg.RawRoundcube()
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	schema, err := v.schema(entities.ExtraKey)
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(raw); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("validate %s: %w", pkg.Name(), err)
		}
		return &ValidationResult{Valid: false, Errors: leafMessages(verr)}, nil
	}
	return &ValidationResult{Valid: true}, nil
}

func (v *ExtraValidator) schema(kind string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[kind]; ok {
		return s, nil
	}

	src, ok := v.registry.GetSchema(kind)
	if !ok {
		return nil, fmt.Errorf("no schema registered for %q", kind)
	}

	url := kind + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("load schema %q: %w", kind, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", kind, err)
	}

	v.compiled[kind] = s
	return s, nil
}

// leafMessages flattens a validation error tree into "location: message"
// lines, one per failing keyword.
func leafMessages(verr *jsonschema.ValidationError) []string {
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Sprintf("%s%s: %s", entities.ExtraKey, loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	sort.Strings(out)
	return out
}
