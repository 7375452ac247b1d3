package esodm

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/esodm/internal/domain/mapping"
)

const tagKey = "es"

// Indexed is implemented by entities that declare their default index.
type Indexed interface {
	IndexName() string
}

// schemaMeta holds parsed struct tag metadata, cached per Index.
type schemaMeta struct {
	typ   reflect.Type
	index string // from IndexName(), may be empty

	idIdx int // -1 when the engine assigns ids
	props map[string]mapping.Property
}

// parseSchema reflects on T and extracts es struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("esodm: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("esodm: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1, props: map[string]mapping.Property{}}
	// *T covers both value and pointer receivers.
	if ix, ok := reflect.New(t).Interface().(Indexed); ok {
		meta.index = ix.IndexName()
	}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// applyTag processes a single `es:"<type>[,id][,analyzer=<name>][,format=<fmt>]"` tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	parts := strings.Split(tag, ",")
	typ := parts[0]
	name := jsonName(f)
	if name == "" {
		return nil // json:"-"
	}

	prop := mapping.Property{Type: typ}
	if typ != "" && !mapping.IsKnownType(typ) {
		return fmt.Errorf("esodm: unknown mapping type %q on field %s", typ, f.Name)
	}

	for _, mod := range parts[1:] {
		key, val, _ := strings.Cut(mod, "=")
		switch key {
		case "id":
			if meta.idIdx != -1 {
				return fmt.Errorf("esodm: duplicate id tag on field %s", f.Name)
			}
			if f.Type.Kind() != reflect.String {
				return fmt.Errorf("esodm: id field %s must be a string", f.Name)
			}
			meta.idIdx = idx
		case "analyzer":
			prop.Analyzer = val
		case "format":
			prop.Format = val
		default:
			return fmt.Errorf("esodm: unknown modifier %q on field %s", mod, f.Name)
		}
	}

	// Только id без типа: поле не попадает в mapping.
	if typ != "" {
		meta.props[name] = prop
	}
	return nil
}

// jsonName returns the document field name for f.
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return f.Name
}

// mapping returns the mapping inferred from tags; nil when no field is typed
// and dynamic mapping applies.
func (m *schemaMeta) mapping() *mapping.Mapping {
	if len(m.props) == 0 {
		return nil
	}
	return &mapping.Mapping{Properties: m.props}
}

func (m *schemaMeta) hasID() bool { return m.idIdx != -1 }

// idOf reads the identifier of item; empty when T has no id field.
func (m *schemaMeta) idOf(item any) string {
	if !m.hasID() {
		return ""
	}
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return v.Field(m.idIdx).String()
}

// setID writes id into the item behind ptr (a *T, or a **T for pointer T).
func (m *schemaMeta) setID(ptr any, id string) {
	if !m.hasID() {
		return
	}
	v := reflect.ValueOf(ptr).Elem()
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	v.Field(m.idIdx).SetString(id)
}
