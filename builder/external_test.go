package builder

import (
	"strings"
	"testing"

	"aqwari.net/xml/xmltree"
)

const signedSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:tns="http://example.com/ns"
           xmlns:ds="http://www.w3.org/2000/09/xmldsig#"
           targetNamespace="http://example.com/ns">
  <xs:element name="Envelope" type="tns:EnvelopeType"/>
  <xs:complexType name="EnvelopeType">
    <xs:sequence>
      <xs:element name="Body" type="xs:string"/>
      <xs:element ref="ds:Signature"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

func TestBuildEmitsExternalSignatureSkeleton(t *testing.T) {
	model, universe := mustModelAndUniverse(t, signedSchema)
	b := New(model, universe, Config{})

	snippet, err := b.Build("Envelope", Params{DepthBound: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sig := childByName(snippet.Root, "ds:Signature")
	if sig == nil {
		t.Fatal("expected the ds:Signature skeleton as a child of Envelope")
	}
	if childByName(sig, "ds:SignedInfo") == nil {
		t.Error("skeleton must carry a SignedInfo child")
	}
	if childByName(sig, "ds:SignatureValue") == nil {
		t.Error("skeleton must carry a SignatureValue child")
	}
	if sig.Attr("", "xmlns:ds") != XMLDSigNamespace {
		t.Errorf("skeleton must declare xmlns:ds, got %q", sig.Attr("", "xmlns:ds"))
	}

	if !snippet.CoveredPaths["/Envelope/Signature"] {
		t.Error("expected /Envelope/Signature among covered paths")
	}

	out := string(xmltree.MarshalIndent(snippet.Root, "", "  "))
	if !strings.Contains(out, "<ds:DigestValue>") {
		t.Errorf("serialized skeleton missing DigestValue:\n%s", out)
	}
}

func TestExternalSkeletonRegistryCoversDSig(t *testing.T) {
	build, ok := ExternalSkeletons[XMLDSigNamespace]
	if !ok {
		t.Fatal("expected an XML-DSig entry in ExternalSkeletons")
	}
	root := build()
	if root.Name.Local != "ds:Signature" {
		t.Errorf("skeleton root = %q, want ds:Signature", root.Name.Local)
	}
}
