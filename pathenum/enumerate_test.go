package pathenum

import (
	"bytes"
	"testing"
	"time"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/agentflare-ai/xsdcov/schema"
)

const orderSchema = `<?xml version="1.0"?>
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

func mustModel(t *testing.T, src string) *schema.Model {
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
		t.Fatalf("unexpected parse warnings: %v", warnings)
	}
	return model
}

func TestEnumerateDefinedPaths(t *testing.T) {
	model := mustModel(t, orderSchema)
	result := Enumerate(model, Config{})

	wantElements := []Path{"/Order", "/Order/ID", "/Order/Note", "/Order/Card", "/Order/Cash"}
	for _, p := range wantElements {
		if !result.DefinedElementPaths[p] {
			t.Errorf("expected defined element path %q", p)
		}
	}

	wantAttrs := []Path{"/Order@version", "/Order@draft"}
	for _, p := range wantAttrs {
		if !result.DefinedAttributePaths[p] {
			t.Errorf("expected defined attribute path %q", p)
		}
	}
}

func TestEnumerateOptionalItems(t *testing.T) {
	model := mustModel(t, orderSchema)
	result := Enumerate(model, Config{})

	note, ok := result.Items["/Order/Note"]
	if !ok {
		t.Fatal("expected /Order/Note to be an optional item")
	}
	if note.Kind != ElementKind || note.Priority != PriorityOptionalElement {
		t.Errorf("Note item = %+v, want optional element priority", note)
	}

	draft, ok := result.Items["/Order@draft"]
	if !ok {
		t.Fatal("expected /Order@draft to be an optional item")
	}
	if draft.Kind != AttributeKind || draft.Priority != PriorityOptionalAttribute {
		t.Errorf("draft item = %+v, want optional attribute priority", draft)
	}

	if _, ok := result.Items["/Order@version"]; ok {
		t.Error("required attribute version must not be an optional item")
	}
	if _, ok := result.Items["/Order/ID"]; ok {
		t.Error("required element ID must not be an optional item")
	}
}

func TestEnumerateChoiceGroup(t *testing.T) {
	model := mustModel(t, orderSchema)
	result := Enumerate(model, Config{})

	card, ok := result.Items["/Order/Card"]
	if !ok || card.ChoiceGroupID == "" {
		t.Fatalf("expected /Order/Card to carry a choice group id, got %+v", card)
	}
	cash, ok := result.Items["/Order/Cash"]
	if !ok || cash.ChoiceGroupID != card.ChoiceGroupID {
		t.Fatalf("expected /Order/Cash to share Card's choice group, got %+v vs %+v", cash, card)
	}
	if card.Priority != PriorityChoiceAlternative {
		t.Errorf("Priority = %d, want PriorityChoiceAlternative", card.Priority)
	}

	members := result.ChoiceGroups[card.ChoiceGroupID]
	if len(members) != 2 {
		t.Fatalf("got %d choice members, want 2", len(members))
	}
}

func TestEnumerateCycleGuard(t *testing.T) {
	const recursiveSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/ns">
  <xs:element name="Node" type="NodeType"/>
  <xs:complexType name="NodeType">
    <xs:sequence>
      <xs:element name="Child" type="NodeType" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

	model := mustModel(t, recursiveSchema)

	done := make(chan *Result, 1)
	go func() { done <- Enumerate(model, Config{MaxDepth: 5}) }()

	select {
	case result := <-done:
		if !result.DefinedElementPaths["/Node"] {
			t.Error("expected /Node to be defined")
		}
		if !result.DefinedElementPaths["/Node/Child"] {
			t.Error("expected /Node/Child to be defined")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Enumerate did not terminate on a self-referential type: cycle guard failed")
	}
}

// TestEnumerateMaxDepthBound pins the depth bound: at MaxDepth=3, paths
// have at most MaxDepth+1 = 4 slashes, and nothing deeper is defined.
func TestEnumerateMaxDepthBound(t *testing.T) {
	const recursiveSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/ns">
  <xs:element name="Node" type="NodeType"/>
  <xs:complexType name="NodeType">
    <xs:sequence>
      <xs:element name="Child" type="NodeType" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

	model := mustModel(t, recursiveSchema)
	result := Enumerate(model, Config{MaxDepth: 3})

	wantDefined := []Path{"/Node", "/Node/Child", "/Node/Child/Child", "/Node/Child/Child/Child"}
	for _, p := range wantDefined {
		if !result.DefinedElementPaths[p] {
			t.Errorf("expected %q to be defined at MaxDepth=3", p)
		}
	}

	tooDeep := Path("/Node/Child/Child/Child/Child")
	if result.DefinedElementPaths[tooDeep] {
		t.Errorf("%q must not be defined at MaxDepth=3 (at most MaxDepth+1 slashes)", tooDeep)
	}
	if len(result.DefinedElementPaths) != len(wantDefined) {
		t.Errorf("got %d defined element paths, want exactly %d: %v", len(result.DefinedElementPaths), len(wantDefined), result.DefinedElementPaths)
	}
}

func TestEnumerateUnknownTypeWarning(t *testing.T) {
	const src = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/ns">
  <xs:element name="Broken" type="NoSuchType"/>
</xs:schema>`
	doc, err := xmldom.Decode(bytes.NewReader([]byte(src)))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	model, _, err := schema.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	result := Enumerate(model, Config{})
	if len(result.Warnings) == 0 {
		t.Fatal("expected an UnknownTypeReference warning")
	}
	if result.Warnings[0].Kind != schema.WarnUnknownType {
		t.Errorf("Warnings[0].Kind = %q", result.Warnings[0].Kind)
	}
}
