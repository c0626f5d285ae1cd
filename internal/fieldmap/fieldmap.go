// Package fieldmap translates JIRA custom field IDs into named, typed
// fields in the import documents. A built-in table covers the fields the
// source instance is known to define; a TOML (preferred) or YAML file can
// extend or override it per run. Unrecognized field IDs are dropped
// silently by the caller.
package fieldmap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Field describes how one custom field is rendered in the output.
type Field struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type"`
}

// Map resolves custom field IDs. Immutable after construction.
type Map struct {
	fields map[string]Field
}

// builtinFields is the fixed table for the source instance's known custom
// fields, keyed by CustomFieldValue.customfield.
var builtinFields = map[string]Field{
	"10010": {Name: "Patch", Type: "select"},
	"10120": {Name: "Approval", Type: "select"},
	"10230": {Name: "Release Note", Type: "text"},
}

// Builtin returns the built-in field table.
func Builtin() *Map {
	return &Map{fields: builtinFields}
}

// fileFormat is the on-disk shape shared by the TOML and YAML forms.
type fileFormat struct {
	Fields map[string]Field `toml:"fields" yaml:"fields"`
}

// Load reads a field-map file and returns the built-in table extended by
// its entries (file entries win on conflict). The format follows the file
// extension: .toml, or .yaml/.yml.
func Load(path string) (*Map, error) {
	var ff fileFormat
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &ff); err != nil {
			return nil, fmt.Errorf("failed to parse field map %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read field map %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &ff); err != nil {
			return nil, fmt.Errorf("failed to parse field map %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported field map format %q (want .toml, .yaml, or .yml)", ext)
	}

	merged := make(map[string]Field, len(builtinFields)+len(ff.Fields))
	for id, f := range builtinFields {
		merged[id] = f
	}
	for id, f := range ff.Fields {
		merged[id] = f
	}
	return &Map{fields: merged}, nil
}

// Lookup resolves a custom field ID.
func (m *Map) Lookup(id string) (Field, bool) {
	f, ok := m.fields[id]
	return f, ok
}

// Len returns the number of known field IDs.
func (m *Map) Len() int { return len(m.fields) }
