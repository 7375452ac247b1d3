package mapping

import (
	"strings"
	"testing"
)

const userMapping = `{"properties":{"id":{"type":"keyword"},"name":{"type":"keyword"},` +
	`"age":{"type":"long"},"sex":{"type":"text"},"address":{"type":"text"}}}`

func TestParse_UserMapping(t *testing.T) {
	m, err := Parse([]byte(userMapping))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Properties) != 5 {
		t.Fatalf("expected 5 properties, got %d", len(m.Properties))
	}
	if m.Properties["age"].Type != TypeLong {
		t.Errorf("age type = %q", m.Properties["age"].Type)
	}
	if m.Properties["address"].Type != TypeText {
		t.Errorf("address type = %q", m.Properties["address"].Type)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"bad json", `{`, "parse mapping"},
		{"no properties", `{}`, "no properties"},
		{"missing type", `{"properties":{"name":{}}}`, `"name" has no type`},
		{"unknown type", `{"properties":{"name":{"type":"string"}}}`, `unknown type "string"`},
		{
			"nested unknown type",
			`{"properties":{"owner":{"properties":{"nick":{"type":"varchar"}}}}}`,
			`"owner.nick" has unknown type`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Source(t *testing.T) {
	s := NewSettings(1, 1).Source()
	if s["number_of_shards"] != 1 || s["number_of_replicas"] != 1 {
		t.Errorf("unexpected settings: %v", s)
	}

	zeroReplicas := NewSettings(3, 0).Source()
	if v, ok := zeroReplicas["number_of_replicas"]; !ok || v != 0 {
		t.Errorf("expected explicit zero replicas, got %v", zeroReplicas)
	}

	if got := (Settings{}).Source(); len(got) != 0 {
		t.Errorf("expected empty settings, got %v", got)
	}

	extra := Settings{RefreshInterval: "1s", Extra: map[string]any{"max_result_window": 50000}}.Source()
	if extra["refresh_interval"] != "1s" || extra["max_result_window"] != 50000 {
		t.Errorf("unexpected settings: %v", extra)
	}
}

func TestDefinition_Body(t *testing.T) {
	m, err := Parse([]byte(`{"properties":{"sku":{"type":"keyword"}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := Definition{Settings: NewSettings(1, 1), Mapping: &m}.Body()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"mappings":{"properties":{"sku":{"type":"keyword"}}},` +
		`"settings":{"number_of_replicas":1,"number_of_shards":1}}`
	if string(body) != want {
		t.Errorf("got  %s\nwant %s", body, want)
	}
}

func TestDefinition_BodyEmpty(t *testing.T) {
	body, err := Definition{}.Body()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{}` {
		t.Errorf("got %s", body)
	}
}

func TestValidateIndexName(t *testing.T) {
	valid := []string{"es-test", "products", "users.v2", "a"}
	for _, name := range valid {
		if err := ValidateIndexName(name); err != nil {
			t.Errorf("ValidateIndexName(%q) = %v", name, err)
		}
	}

	invalid := []string{"", ".", "..", "Users", "_users", "-x", "+x", "a b", "a*b", "a,b", "a#b", "a:b",
		strings.Repeat("a", 256)}
	for _, name := range invalid {
		if err := ValidateIndexName(name); err == nil {
			t.Errorf("ValidateIndexName(%q) expected error", name)
		}
	}
}
