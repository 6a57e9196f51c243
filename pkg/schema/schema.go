// Package schema validates collection documents against embedded JSON
// schemas before they reach the document store.
package schema

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Registry holds one compiled schema per collection.
type Registry struct {
	schemas map[string]*gojsonschema.Schema
}

// NewRegistry compiles every embedded schema. The file name without its
// extension is the collection name.
func NewRegistry() (*Registry, error) {
	entries, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	reg := &Registry{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		raw, err := schemaFiles.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", entry.Name(), err)
		}
		reg.schemas[strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))] = compiled
	}
	return reg, nil
}

// Has reports whether collection has a schema.
func (r *Registry) Has(collection string) bool {
	_, ok := r.schemas[collection]
	return ok
}

// Validate checks document against the collection schema. Partial documents
// skip required-property errors. Collections without a schema pass.
func (r *Registry) Validate(collection string, document interface{}, partial bool) error {
	compiled, ok := r.schemas[collection]
	if !ok {
		return nil
	}
	var loader gojsonschema.JSONLoader
	switch doc := document.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(doc)
	default:
		loader = gojsonschema.NewGoLoader(doc)
	}

	result, err := compiled.Validate(loader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "document is not valid JSON")
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		if partial && desc.Type() == "required" {
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	if len(msgs) == 0 {
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s document invalid: %s", collection, strings.Join(msgs, "; ")))
}
