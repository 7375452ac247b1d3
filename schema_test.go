package esodm

import (
	"testing"
)

func TestParseSchema_User(t *testing.T) {
	meta, err := parseSchema[testUser]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.index != "es-test" {
		t.Errorf("index = %q, want es-test", meta.index)
	}
	if !meta.hasID() {
		t.Fatal("expected id field")
	}
	m := meta.mapping()
	if m == nil || len(m.Properties) != 5 {
		t.Fatalf("expected 5 properties, got %+v", m)
	}
	if m.Properties["age"].Type != "long" || m.Properties["id"].Type != "keyword" {
		t.Errorf("unexpected properties: %+v", m.Properties)
	}
	if m.Properties["address"].Analyzer != "standard" {
		t.Errorf("analyzer = %q, want standard", m.Properties["address"].Analyzer)
	}
}

func TestParseSchema_PointerReceiverIndexName(t *testing.T) {
	meta, err := parseSchema[testProduct]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.index != "products" {
		t.Errorf("index = %q, want products", meta.index)
	}
	if meta.hasID() {
		t.Error("product has no id field")
	}
	if meta.mapping().Properties["platTags"].Type != "keyword" {
		t.Error("platTags must map to keyword")
	}
}

func TestParseSchema_Untyped(t *testing.T) {
	meta, err := parseSchema[untypedDoc]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.mapping() != nil {
		t.Error("untyped struct must use dynamic mapping")
	}
}

func TestParseSchema_Errors(t *testing.T) {
	type dupID struct {
		A string `json:"a" es:"keyword,id"`
		B string `json:"b" es:"keyword,id"`
	}
	type badType struct {
		A string `json:"a" es:"varchar"`
	}
	type intID struct {
		ID int `json:"id" es:"long,id"`
	}
	type badModifier struct {
		A string `json:"a" es:"keyword,primary"`
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"non-struct", func() error { _, err := parseSchema[int](); return err }},
		{"interface", func() error { _, err := parseSchema[any](); return err }},
		{"duplicate id", func() error { _, err := parseSchema[dupID](); return err }},
		{"unknown type", func() error { _, err := parseSchema[badType](); return err }},
		{"non-string id", func() error { _, err := parseSchema[intID](); return err }},
		{"unknown modifier", func() error { _, err := parseSchema[badModifier](); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseSchema_JSONNames(t *testing.T) {
	type doc struct {
		Key     string `json:"key,omitempty" es:"keyword,id"`
		Skipped string `json:"-"             es:"keyword"`
		Plain   string `es:"text"`
	}
	meta, err := parseSchema[doc]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	props := meta.mapping().Properties
	if _, ok := props["key"]; !ok {
		t.Error("expected key property")
	}
	if _, ok := props["Plain"]; !ok {
		t.Error("expected Plain property named after the Go field")
	}
	if len(props) != 2 {
		t.Errorf("expected 2 properties, got %v", props)
	}
}

func TestIDOfAndSetID(t *testing.T) {
	meta, _ := parseSchema[testUser]()

	u := testUser{ID: "3"}
	if got := meta.idOf(u); got != "3" {
		t.Errorf("idOf = %q, want 3", got)
	}
	meta.setID(&u, "21")
	if u.ID != "21" {
		t.Errorf("setID: got %q", u.ID)
	}

	pmeta, _ := parseSchema[*testUser]()
	p := &testUser{}
	pmeta.setID(&p, "22")
	if p.ID != "22" || pmeta.idOf(p) != "22" {
		t.Errorf("pointer setID/idOf: got %q", p.ID)
	}
	var nilUser *testUser
	if pmeta.idOf(nilUser) != "" {
		t.Error("idOf(nil) must be empty")
	}
}
