package highlight

import (
	"errors"
	"fmt"
)

// Field is a highlighted field with optional per-field overrides.
type Field struct {
	Name              string
	FragmentSize      int
	NumberOfFragments int
}

// Highlight configures hit highlighting.
type Highlight struct {
	Fields            []Field
	PreTags           []string
	PostTags          []string
	FragmentSize      int
	NumberOfFragments int
}

// New creates a highlight block for the named fields.
func New(fields ...string) *Highlight {
	h := &Highlight{Fields: make([]Field, len(fields))}
	for i, f := range fields {
		h.Fields[i] = Field{Name: f}
	}
	return h
}

// Tags sets the markup wrapped around matched fragments.
func (h *Highlight) Tags(pre, post string) *Highlight {
	h.PreTags = []string{pre}
	h.PostTags = []string{post}
	return h
}

// Fragment sets the fragment size for all fields.
func (h *Highlight) Fragment(size int) *Highlight {
	h.FragmentSize = size
	return h
}

// Validate checks the highlight block.
func (h *Highlight) Validate() error {
	if len(h.Fields) == 0 {
		return errors.New("highlight requires at least one field")
	}
	for i, f := range h.Fields {
		if f.Name == "" {
			return fmt.Errorf("highlight field %d has no name", i)
		}
	}
	if len(h.PreTags) != len(h.PostTags) {
		return errors.New("highlight pre_tags and post_tags must have the same length")
	}
	if h.FragmentSize < 0 || h.NumberOfFragments < 0 {
		return errors.New("highlight fragment settings must not be negative")
	}
	return nil
}

// Source renders the "highlight" section.
func (h *Highlight) Source() map[string]any {
	fields := make(map[string]any, len(h.Fields))
	for _, f := range h.Fields {
		opts := map[string]any{}
		if f.FragmentSize > 0 {
			opts["fragment_size"] = f.FragmentSize
		}
		if f.NumberOfFragments > 0 {
			opts["number_of_fragments"] = f.NumberOfFragments
		}
		fields[f.Name] = opts
	}

	out := map[string]any{"fields": fields}
	if len(h.PreTags) > 0 {
		out["pre_tags"] = h.PreTags
		out["post_tags"] = h.PostTags
	}
	if h.FragmentSize > 0 {
		out["fragment_size"] = h.FragmentSize
	}
	if h.NumberOfFragments > 0 {
		out["number_of_fragments"] = h.NumberOfFragments
	}
	return out
}
