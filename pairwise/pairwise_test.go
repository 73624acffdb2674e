package pairwise

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcov/pathenum"
	"github.com/agentflare-ai/xsdcov/schema"
)

const orderSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:tns="http://example.com/ns"
           targetNamespace="http://example.com/ns">
  <xs:element name="Order" type="tns:OrderType"/>
  <xs:complexType name="OrderType">
    <xs:sequence>
      <xs:element name="Note" type="xs:string" minOccurs="0"/>
      <xs:element name="Gift" type="xs:string" minOccurs="0"/>
      <xs:choice>
        <xs:element name="Card" type="xs:string"/>
        <xs:element name="Cash" type="xs:string"/>
      </xs:choice>
    </xs:sequence>
    <xs:attribute name="draft" type="xs:string" use="optional"/>
  </xs:complexType>
</xs:schema>`

func mustUniverse(t *testing.T, src string) *pathenum.Result {
	t.Helper()
	doc, err := xmldom.Decode(bytes.NewReader([]byte(src)))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	model, warnings, err := schema.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return pathenum.Enumerate(model, pathenum.Config{})
}

func TestGenerateCoversAllParameters(t *testing.T) {
	universe := mustUniverse(t, orderSchema)
	array := Generate(universe, Config{Seed: 42, MaxPatterns: 50})

	if len(array.Parameters) == 0 {
		t.Fatal("expected at least one parameter")
	}
	if array.Strength != 2 {
		t.Errorf("Strength = %d, want 2", array.Strength)
	}
	if array.Coverage < 0.99 {
		t.Errorf("Coverage = %v, want ~1.0 for a small parameter set with ample patterns", array.Coverage)
	}
	if len(array.Patterns) == 0 {
		t.Fatal("expected at least one pattern")
	}
}

func TestGenerateRespectsMaxPatterns(t *testing.T) {
	universe := mustUniverse(t, orderSchema)
	array := Generate(universe, Config{Seed: 1, MaxPatterns: 2})
	if len(array.Patterns) > 2 {
		t.Errorf("got %d patterns, want at most 2", len(array.Patterns))
	}
}

func TestGenerateExcludesChoiceSiblingTruePair(t *testing.T) {
	universe := mustUniverse(t, orderSchema)
	array := Generate(universe, Config{Seed: 7, MaxPatterns: 50})

	var cardPath, cashPath pathenum.Path
	for _, p := range array.Parameters {
		switch {
		case strings.HasSuffix(string(p), "/Card"):
			cardPath = p
		case strings.HasSuffix(string(p), "/Cash"):
			cashPath = p
		}
	}
	if cardPath == "" || cashPath == "" {
		t.Fatal("expected Card and Cash among the generated parameters")
	}

	for _, pattern := range array.Patterns {
		if pattern.Assignments[cardPath] && pattern.Assignments[cashPath] {
			t.Fatalf("pattern %s assigns both choice siblings true, which is structurally impossible", pattern.ID)
		}
	}
}

func TestGenerateEmptyUniverse(t *testing.T) {
	array := Generate(&pathenum.Result{}, Config{})
	if array.Coverage != 1.0 {
		t.Errorf("Coverage = %v, want 1.0 for an empty parameter set", array.Coverage)
	}
	if len(array.Patterns) != 0 {
		t.Errorf("got %d patterns, want 0", len(array.Patterns))
	}
}
