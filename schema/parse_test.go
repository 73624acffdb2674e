package schema

import (
	"bytes"
	"testing"

	"github.com/agentflare-ai/go-xmldom"
)

const sampleSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:tns="http://example.com/ns"
           targetNamespace="http://example.com/ns">
  <xs:element name="Order" type="tns:OrderType"/>
  <xs:complexType name="OrderType">
    <xs:sequence>
      <xs:element name="ID" type="xs:string"/>
      <xs:element name="Note" type="xs:string" minOccurs="0"/>
      <xs:choice>
        <xs:element name="Card" type="xs:string"/>
        <xs:element name="Cash" type="xs:string"/>
      </xs:choice>
    </xs:sequence>
    <xs:attribute name="version" type="xs:string" use="required"/>
    <xs:attribute name="draft" type="xs:string" use="optional"/>
  </xs:complexType>
</xs:schema>`

func mustParse(t *testing.T, src string) *Model {
	t.Helper()
	doc, err := xmldom.Decode(bytes.NewReader([]byte(src)))
	if err != nil {
		t.Fatalf("decoding test schema: %v", err)
	}
	model, warnings, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return model
}

func TestParseGlobalElementAndComplexType(t *testing.T) {
	model := mustParse(t, sampleSchema)

	if model.TargetNamespace != "http://example.com/ns" {
		t.Errorf("TargetNamespace = %q", model.TargetNamespace)
	}

	decl, ok := model.GlobalElements["Order"]
	if !ok {
		t.Fatal("expected global element Order")
	}
	if decl.TypeName.Local != "OrderType" {
		t.Errorf("TypeName.Local = %q, want OrderType", decl.TypeName.Local)
	}

	typ, ok := model.ResolveType("OrderType")
	if !ok {
		t.Fatal("expected OrderType in TypeCache")
	}
	ct, ok := typ.(*ComplexType)
	if !ok {
		t.Fatalf("OrderType resolved to %T, want *ComplexType", typ)
	}
	if len(ct.Attributes) != 2 {
		t.Fatalf("got %d attributes, want 2", len(ct.Attributes))
	}

	mg, ok := ct.Content.(*ModelGroup)
	if !ok {
		t.Fatalf("Content is %T, want *ModelGroup", ct.Content)
	}
	if mg.Kind != SequenceGroup {
		t.Errorf("Kind = %q, want sequence", mg.Kind)
	}
	if len(mg.Particles) != 3 {
		t.Fatalf("got %d particles, want 3", len(mg.Particles))
	}

	choice, ok := mg.Particles[2].(*ModelGroup)
	if !ok || choice.Kind != ChoiceGroup {
		t.Fatalf("third particle = %#v, want a choice ModelGroup", mg.Particles[2])
	}
	if len(choice.Particles) != 2 {
		t.Errorf("got %d choice alternatives, want 2", len(choice.Particles))
	}
}

func TestParseAttributeUse(t *testing.T) {
	model := mustParse(t, sampleSchema)
	ct := model.TypeCache["OrderType"].(*ComplexType)

	var required, optional *AttributeDecl
	for _, a := range ct.Attributes {
		switch a.Name.Local {
		case "version":
			required = a
		case "draft":
			optional = a
		}
	}
	if required == nil || required.Use != RequiredUse {
		t.Errorf("version attribute Use = %+v, want RequiredUse", required)
	}
	if optional == nil || optional.Use != OptionalUse {
		t.Errorf("draft attribute Use = %+v, want OptionalUse", optional)
	}
}

func TestParseRecordsUnknownTypeName(t *testing.T) {
	const src = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/ns">
  <xs:element name="Broken" type="NoSuchType"/>
</xs:schema>`

	doc, err := xmldom.Decode(bytes.NewReader([]byte(src)))
	if err != nil {
		t.Fatalf("decoding test schema: %v", err)
	}
	model, _, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	decl := model.GlobalElements["Broken"]
	if decl == nil {
		t.Fatal("expected global element Broken")
	}
	if decl.TypeName.Local != "NoSuchType" {
		t.Errorf("TypeName.Local = %q", decl.TypeName.Local)
	}
	// Parse itself does not resolve or warn about unknown types; that is
	// pathenum's descendElementType's job during enumeration, not Parse's.
}

func TestNotASchemaDocument(t *testing.T) {
	doc, err := xmldom.Decode(bytes.NewReader([]byte(`<notAschema/>`)))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if _, _, err := Parse(doc); err == nil {
		t.Fatal("expected an error for a non-schema root element")
	}
}

func TestIsBuiltin(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"string", true},
		{"int", true},
		{"anyType", true},
		{"OrderType", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsBuiltin(tt.name); got != tt.want {
			t.Errorf("IsBuiltin(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
