package builder

import (
	"encoding/xml"

	"aqwari.net/xml/xmltree"
)

// XMLDSigNamespace is the XML-DSig namespace, the one external schema
// this package ships a skeleton for out of the box.
const XMLDSigNamespace = "http://www.w3.org/2000/09/xmldsig#"

// ExternalSkeletons maps a namespace URI to a constructor for the
// hand-crafted minimal subtree needed to pass structural validation
// against that namespace's schema. The coverage package does not read
// this registry; it classifies used-but-undefined paths as external via
// ExternalPathMarkers below.
//
// Elements here carry their namespace prefix baked directly into the
// element's local name ("ds:Signature") with an empty xml.Name.Space,
// rather than relying on xmltree's Scope-based prefix resolution: Scope
// is populated by xmltree.Parse's unexported namespace-scan and has no
// public constructor, so a tree built node-by-node (as every skeleton and
// every builder-generated element here is) declares its own xmlns
// attributes as plain, unprefixed Attr entries instead.
var ExternalSkeletons = map[string]func() *xmltree.Element{
	XMLDSigNamespace: dsSignatureSkeleton,
}

func elem(local string, attrs []xml.Attr, children ...xmltree.Element) xmltree.Element {
	return xmltree.Element{
		StartElement: xml.StartElement{Name: xml.Name{Local: local}, Attr: attrs},
		Children:     children,
	}
}

func attr(local, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: local}, Value: value}
}

func textElem(local, text string) xmltree.Element {
	e := elem(local, nil)
	e.Content = []byte(text)
	return e
}

// dsSignatureSkeleton builds the minimum ds:Signature subtree: one
// SignedInfo with one Reference, plus a SignatureValue. This is the
// smallest tree that satisfies ds:Signature's required content model
// without claiming to be cryptographically meaningful. Value synthesis
// for external skeletons is a fixed literal, not the Value Synthesizer's
// concern.
func dsSignatureSkeleton() *xmltree.Element {
	digestValue := textElem("ds:DigestValue", "AAAAAAAAAAAAAAAAAAAAAAAAAAA=")
	digestMethod := elem("ds:DigestMethod", []xml.Attr{attr("Algorithm", "http://www.w3.org/2001/04/xmlenc#sha256")})
	reference := elem("ds:Reference", []xml.Attr{attr("URI", "")}, digestMethod, digestValue)
	signatureMethod := elem("ds:SignatureMethod", []xml.Attr{attr("Algorithm", "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256")})
	canonicalizationMethod := elem("ds:CanonicalizationMethod", []xml.Attr{attr("Algorithm", "http://www.w3.org/2001/10/xml-exc-c14n#")})
	signedInfo := elem("ds:SignedInfo", nil, canonicalizationMethod, signatureMethod, reference)
	signatureValue := textElem("ds:SignatureValue", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")

	root := elem("ds:Signature", []xml.Attr{attr("xmlns:ds", XMLDSigNamespace)}, signedInfo, signatureValue)
	return &root
}

// ExternalPathMarkers lists the structural path segments the coverage
// package treats as "inside a known external skeleton": any path
// containing "/Signature/" or "/Signature@", or ending in "/Signature",
// belongs to the XML-DSig subtree.
var ExternalPathMarkers = []string{"/Signature"}
