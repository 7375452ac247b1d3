// Package mapping describes index settings and field mappings.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Field types accepted in a mapping.
const (
	TypeKeyword     = "keyword"
	TypeText        = "text"
	TypeLong        = "long"
	TypeInteger     = "integer"
	TypeShort       = "short"
	TypeByte        = "byte"
	TypeDouble      = "double"
	TypeFloat       = "float"
	TypeHalfFloat   = "half_float"
	TypeScaledFloat = "scaled_float"
	TypeBoolean     = "boolean"
	TypeDate        = "date"
	TypeObject      = "object"
	TypeNested      = "nested"
	TypeIP          = "ip"
)

var knownTypes = map[string]struct{}{
	TypeKeyword: {}, TypeText: {}, TypeLong: {}, TypeInteger: {}, TypeShort: {},
	TypeByte: {}, TypeDouble: {}, TypeFloat: {}, TypeHalfFloat: {}, TypeScaledFloat: {},
	TypeBoolean: {}, TypeDate: {}, TypeObject: {}, TypeNested: {}, TypeIP: {},
}

// IsKnownType reports whether t is a supported field type.
func IsKnownType(t string) bool {
	_, ok := knownTypes[t]
	return ok
}

// Property is a single field mapping.
type Property struct {
	Type       string              `json:"type,omitempty"`
	Analyzer   string              `json:"analyzer,omitempty"`
	Format     string              `json:"format,omitempty"`
	Fields     map[string]Property `json:"fields,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
}

// Mapping is the "mappings" section of an index.
type Mapping struct {
	Dynamic    string              `json:"dynamic,omitempty"`
	Properties map[string]Property `json:"properties"`
}

// Parse reads a mapping document such as
// {"properties":{"id":{"type":"keyword"},"age":{"type":"long"}}}.
func Parse(data []byte) (Mapping, error) {
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return Mapping{}, fmt.Errorf("parse mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

// Validate checks that every property declares a known type.
func (m Mapping) Validate() error {
	if len(m.Properties) == 0 {
		return errors.New("mapping has no properties")
	}
	return validateProperties("", m.Properties)
}

func validateProperties(prefix string, props map[string]Property) error {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := props[name]
		path := prefix + name
		if name == "" {
			return fmt.Errorf("property name is required under %q", prefix)
		}
		// Объект без type допустим, если есть вложенные properties.
		if p.Type == "" && len(p.Properties) == 0 {
			return fmt.Errorf("property %q has no type", path)
		}
		if p.Type != "" && !IsKnownType(p.Type) {
			return fmt.Errorf("property %q has unknown type %q", path, p.Type)
		}
		if len(p.Properties) > 0 {
			if err := validateProperties(path+".", p.Properties); err != nil {
				return err
			}
		}
	}
	return nil
}

// Settings is the subset of index settings esodm manages.
type Settings struct {
	Shards          int
	Replicas        *int // nil keeps the cluster default; 0 is a valid value
	RefreshInterval string
	Extra           map[string]any
}

// NewSettings sets shard and replica counts explicitly.
func NewSettings(shards, replicas int) Settings {
	return Settings{Shards: shards, Replicas: &replicas}
}

// Source renders the "settings" section; zero values are omitted so the
// cluster defaults apply.
func (s Settings) Source() map[string]any {
	out := make(map[string]any, len(s.Extra)+3)
	for k, v := range s.Extra {
		out[k] = v
	}
	if s.Shards > 0 {
		out["number_of_shards"] = s.Shards
	}
	if s.Replicas != nil {
		out["number_of_replicas"] = *s.Replicas
	}
	if s.RefreshInterval != "" {
		out["refresh_interval"] = s.RefreshInterval
	}
	return out
}

// Definition is a complete create-index request.
type Definition struct {
	Settings Settings
	Mapping  *Mapping
}

// Body renders the create-index request body.
func (d Definition) Body() ([]byte, error) {
	body := make(map[string]any, 2)
	if s := d.Settings.Source(); len(s) > 0 {
		body["settings"] = s
	}
	if d.Mapping != nil {
		if err := d.Mapping.Validate(); err != nil {
			return nil, err
		}
		body["mappings"] = d.Mapping
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal index definition: %w", err)
	}
	return data, nil
}

const maxIndexNameBytes = 255

// ValidateIndexName applies the engine's index naming rules.
func ValidateIndexName(name string) error {
	switch {
	case name == "":
		return errors.New("index name is required")
	case name == "." || name == "..":
		return fmt.Errorf("index name %q is reserved", name)
	case len(name) > maxIndexNameBytes:
		return fmt.Errorf("index name longer than %d bytes", maxIndexNameBytes)
	case strings.ToLower(name) != name:
		return fmt.Errorf("index name %q must be lowercase", name)
	case strings.ContainsAny(name[:1], "-_+"):
		return fmt.Errorf("index name %q must not start with '-', '_' or '+'", name)
	case strings.ContainsAny(name, `\/*?"<>| ,#:`):
		return fmt.Errorf("index name %q contains an invalid character", name)
	}
	return nil
}
