package builder

import (
	"testing"

	"github.com/agentflare-ai/xsdcov/schema"
)

func TestValueEnumerationFirst(t *testing.T) {
	s := NewSynthesizer()
	restr := &schema.Restriction{
		Base:         schema.QName{Namespace: schema.XSDNamespace, Local: "string"},
		Enumerations: []string{"X", "Y", "Z"},
	}
	if got := s.Value("ColorType", restr); got != "X" {
		t.Errorf("Value with enumerations = %q, want first enumeration X", got)
	}
}

func TestValueBuiltinTable(t *testing.T) {
	s := NewSynthesizer()
	tests := []struct {
		typeLocal string
		want      string
	}{
		{"boolean", "true"},
		{"date", "2024-01-01"},
		{"dateTime", "2024-01-01T00:00:00Z"},
		{"integer", "1"},
		{"base64Binary", "SGVsbG8="},
		{"hexBinary", "48656c6c6f"},
		{"NoSuchBuiltin", "NoSuchBuiltin_value"},
		{"", "value"},
	}
	for _, tt := range tests {
		if got := s.Value(tt.typeLocal, nil); got != tt.want {
			t.Errorf("Value(%q) = %q, want %q", tt.typeLocal, got, tt.want)
		}
	}
}

func TestValueForWalksRestrictionBase(t *testing.T) {
	s := NewSynthesizer()

	enumBase := &schema.SimpleType{
		QName: schema.QName{Local: "BaseColor"},
		Restriction: &schema.Restriction{
			Base:         schema.QName{Namespace: schema.XSDNamespace, Local: "string"},
			Enumerations: []string{"red", "green"},
		},
	}
	derived := &schema.SimpleType{
		QName:       schema.QName{Local: "DerivedColor"},
		Restriction: &schema.Restriction{Base: schema.QName{Local: "BaseColor"}},
	}
	model := &schema.Model{TypeCache: map[string]schema.Type{"BaseColor": enumBase}}

	if got := s.ValueFor(model, "DerivedColor", derived); got != "red" {
		t.Errorf("ValueFor over a derived type = %q, want the base's first enumeration", got)
	}
}

func TestValueDeterminism(t *testing.T) {
	a := NewSynthesizer()
	b := NewSynthesizer()
	for _, name := range []string{"string", "int", "date", "anyURI", "Custom"} {
		if a.Value(name, nil) != b.Value(name, nil) {
			t.Errorf("Value(%q) differs across synthesizer instances", name)
		}
	}
}
