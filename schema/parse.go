package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// parser carries the in-progress Model plus the document's namespace
// scope needed to resolve prefixed QNames (type="tns:Foo" and the like).
// One parser per schema document; Model accumulation across imports is
// the Loader's job, not this type's.
type parser struct {
	model    *Model
	doc      xmldom.Document
	warnings *[]Warning
}

// Parse parses a single XSD document into a Model. It does not follow
// import/include; that is Loader.Load's job. Parse is the single-document
// half of the Schema Loader contract.
func Parse(doc xmldom.Document) (*Model, []Warning, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("nil document")
	}
	root := doc.DocumentElement()
	if root == nil {
		return nil, nil, fmt.Errorf("no root element")
	}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		return nil, nil, fmt.Errorf("not an XSD schema document")
	}

	var warnings []Warning
	p := &parser{model: newModel(), doc: doc, warnings: &warnings}
	if tns := root.GetAttribute("targetNamespace"); tns != "" {
		p.model.TargetNamespace = string(tns)
	}

	children := root.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "element":
			p.parseGlobalElement(child)
		case "simpleType":
			p.parseNamedSimpleType(child)
		case "complexType":
			p.parseNamedComplexType(child)
		case "attributeGroup":
			p.parseAttributeGroup(child)
		case "group":
			p.parseNamedGroup(child)
		case "import":
			p.parseImportOrInclude(child, false)
		case "include":
			p.parseImportOrInclude(child, true)
		}
	}

	return p.model, warnings, nil
}

func (p *parser) warn(kind, format string, args ...any) {
	*p.warnings = append(*p.warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) qname(local string) QName {
	return QName{Namespace: p.model.TargetNamespace, Local: local}
}

// parseQName resolves a possibly-prefixed name ("tns:Foo", "xs:string")
// against the document's root namespace declarations.
func (p *parser) parseQName(name string) QName {
	if name == "" {
		return QName{}
	}
	parts := strings.SplitN(name, ":", 2)
	if len(parts) != 2 {
		return QName{Namespace: p.model.TargetNamespace, Local: parts[0]}
	}
	prefix, local := parts[0], parts[1]
	if prefix == "xs" || prefix == "xsd" {
		return QName{Namespace: XSDNamespace, Local: local}
	}
	root := p.doc.DocumentElement()
	if root != nil {
		attrs := root.Attributes()
		for i := uint(0); i < attrs.Length(); i++ {
			attr := attrs.Item(i)
			if attr == nil {
				continue
			}
			if string(attr.NodeName()) == "xmlns:"+prefix {
				return QName{Namespace: string(attr.NodeValue()), Local: local}
			}
		}
	}
	return QName{Namespace: prefix, Local: local}
}

func (p *parser) parseOccurs(elem xmldom.Element, attr string, def int) int {
	v := string(elem.GetAttribute(xmldom.DOMString(attr)))
	if v == "" {
		return def
	}
	if v == "unbounded" {
		return -1
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func (p *parser) parseGlobalElement(elem xmldom.Element) {
	decl := p.parseElementCommon(elem)
	if decl == nil {
		return
	}
	decl.MinOcc, decl.MaxOcc = 1, 1
	p.model.GlobalElements[decl.Name.Local] = decl
}

// parseInlineElement parses a <xsd:element> particle inside a content
// model, without registering it as a global element.
func (p *parser) parseInlineElement(elem xmldom.Element) *ElementDecl {
	decl := p.parseElementCommon(elem)
	if decl == nil {
		return nil
	}
	decl.MinOcc = p.parseOccurs(elem, "minOccurs", 1)
	decl.MaxOcc = p.parseOccurs(elem, "maxOccurs", 1)
	return decl
}

func (p *parser) parseElementCommon(elem xmldom.Element) *ElementDecl {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil // reference-only particle; caller handles ref=
	}
	decl := &ElementDecl{
		Name:   p.qname(name),
		MinOcc: 1,
		MaxOcc: 1,
	}
	if nillable := string(elem.GetAttribute("nillable")); nillable == "true" {
		decl.Nillable = true
	}
	if abstract := string(elem.GetAttribute("abstract")); abstract == "true" {
		decl.Abstract = true
	}
	if typeName := string(elem.GetAttribute("type")); typeName != "" {
		decl.TypeName = p.parseQName(typeName)
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "simpleType":
			decl.Type = p.parseAnonSimpleType(child)
		case "complexType":
			decl.Type = p.parseAnonComplexType(child)
		}
	}
	return decl
}

func (p *parser) parseAnonSimpleType(elem xmldom.Element) *SimpleType {
	st := &SimpleType{QName: QName{Namespace: p.model.TargetNamespace, Local: "_anonymous"}}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "restriction":
			st.Restriction = p.parseRestriction(child)
		case "list":
			st.List = p.parseList(child)
		case "union":
			st.Union = p.parseUnion(child)
		}
	}
	return st
}

func (p *parser) parseNamedSimpleType(elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}
	st := p.parseAnonSimpleType(elem)
	st.QName = p.qname(name)
	p.model.TypeCache[name] = st
}

func (p *parser) parseRestriction(elem xmldom.Element) *Restriction {
	r := &Restriction{}
	if base := string(elem.GetAttribute("base")); base != "" {
		r.Base = p.parseQName(base)
	}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "enumeration":
			r.Enumerations = append(r.Enumerations, string(child.GetAttribute("value")))
		case "pattern":
			r.Pattern = string(child.GetAttribute("value"))
		case "length":
			if n, err := strconv.Atoi(string(child.GetAttribute("value"))); err == nil {
				r.MinLength, r.MaxLength, r.HasLength = n, n, true
			}
		case "minLength":
			if n, err := strconv.Atoi(string(child.GetAttribute("value"))); err == nil {
				r.MinLength, r.HasLength = n, true
			}
		case "maxLength":
			if n, err := strconv.Atoi(string(child.GetAttribute("value"))); err == nil {
				r.MaxLength, r.HasLength = n, true
			}
		}
	}
	return r
}

func (p *parser) parseList(elem xmldom.Element) *List {
	l := &List{}
	if it := string(elem.GetAttribute("itemType")); it != "" {
		l.ItemType = p.parseQName(it)
	}
	return l
}

func (p *parser) parseUnion(elem xmldom.Element) *Union {
	u := &Union{}
	if mt := string(elem.GetAttribute("memberTypes")); mt != "" {
		for _, name := range strings.Fields(mt) {
			u.MemberTypes = append(u.MemberTypes, p.parseQName(name))
		}
	}
	return u
}

func (p *parser) parseAnonComplexType(elem xmldom.Element) *ComplexType {
	ct := &ComplexType{QName: QName{Namespace: p.model.TargetNamespace, Local: "_anonymous"}}
	if mixed := string(elem.GetAttribute("mixed")); mixed == "true" {
		ct.Mixed = true
	}
	if abstract := string(elem.GetAttribute("abstract")); abstract == "true" {
		ct.Abstract = true
	}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "simpleContent":
			// sc.Extension.Attributes are applied once, from ct.Content,
			// by whatever walks this complex type (pathenum's
			// descendComplexType, builder's buildComplexType). They must
			// not also be copied onto ct.Attributes, or every consumer
			// that applies both ends up emitting each attribute twice.
			ct.Content = p.parseSimpleContent(child)
		case "complexContent":
			ct.Content = p.parseComplexContent(child)
		case "sequence", "choice", "all":
			ct.Content = p.parseModelGroup(child)
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				ct.Content = &GroupRef{
					Ref:    p.parseQName(ref),
					MinOcc: p.parseOccurs(child, "minOccurs", 1),
					MaxOcc: p.parseOccurs(child, "maxOccurs", 1),
				}
			}
		case "attribute":
			if attr := p.parseAttribute(child); attr != nil {
				ct.Attributes = append(ct.Attributes, attr)
			}
		case "attributeGroup":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				ct.AttributeGroup = append(ct.AttributeGroup, p.parseQName(ref))
			}
		case "anyAttribute":
			ct.AnyAttribute = &AnyAttribute{Namespace: string(child.GetAttribute("namespace"))}
		}
	}
	return ct
}

func (p *parser) parseNamedComplexType(elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}
	ct := p.parseAnonComplexType(elem)
	ct.QName = p.qname(name)
	p.model.TypeCache[name] = ct
}

func (p *parser) parseSimpleContent(elem xmldom.Element) *SimpleContent {
	sc := &SimpleContent{}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "extension":
			sc.Extension = p.parseExtension(child)
			sc.Base = sc.Extension.Base
		case "restriction":
			r := p.parseRestriction(child)
			sc.Base = r.Base
		}
	}
	return sc
}

func (p *parser) parseComplexContent(elem xmldom.Element) *ComplexContent {
	cc := &ComplexContent{}
	if mixed := string(elem.GetAttribute("mixed")); mixed == "true" {
		cc.Mixed = true
	}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "extension" {
			cc.Extension = p.parseExtension(child)
		}
	}
	return cc
}

func (p *parser) parseExtension(elem xmldom.Element) *Extension {
	ext := &Extension{}
	if base := string(elem.GetAttribute("base")); base != "" {
		ext.Base = p.parseQName(base)
	}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			ext.Content = p.parseModelGroup(child)
		case "attribute":
			if attr := p.parseAttribute(child); attr != nil {
				ext.Attributes = append(ext.Attributes, attr)
			}
		}
	}
	return ext
}

func (p *parser) parseModelGroup(elem xmldom.Element) *ModelGroup {
	mg := &ModelGroup{
		MinOcc: p.parseOccurs(elem, "minOccurs", 1),
		MaxOcc: p.parseOccurs(elem, "maxOccurs", 1),
	}
	switch string(elem.LocalName()) {
	case "sequence":
		mg.Kind = SequenceGroup
	case "choice":
		mg.Kind = ChoiceGroup
	case "all":
		mg.Kind = AllGroup
	}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "element":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				mg.Particles = append(mg.Particles, &ElementRef{
					Ref:    p.parseQName(ref),
					MinOcc: p.parseOccurs(child, "minOccurs", 1),
					MaxOcc: p.parseOccurs(child, "maxOccurs", 1),
				})
			} else if inline := p.parseInlineElement(child); inline != nil {
				mg.Particles = append(mg.Particles, inline)
			}
		case "group":
			if ref := string(child.GetAttribute("ref")); ref != "" {
				mg.Particles = append(mg.Particles, &GroupRef{
					Ref:    p.parseQName(ref),
					MinOcc: p.parseOccurs(child, "minOccurs", 1),
					MaxOcc: p.parseOccurs(child, "maxOccurs", 1),
				})
			}
		case "sequence", "choice", "all":
			mg.Particles = append(mg.Particles, p.parseModelGroup(child))
		case "any":
			mg.Particles = append(mg.Particles, &AnyElement{
				Namespace: string(child.GetAttribute("namespace")),
				MinOcc:    p.parseOccurs(child, "minOccurs", 1),
				MaxOcc:    p.parseOccurs(child, "maxOccurs", 1),
			})
		}
	}
	return mg
}

func (p *parser) parseNamedGroup(elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			mg := p.parseModelGroup(child)
			p.model.Groups[name] = mg
			return
		}
	}
}

func (p *parser) parseAttribute(elem xmldom.Element) *AttributeDecl {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}
	attr := &AttributeDecl{
		Name: p.qname(name),
		Use:  OptionalUse,
	}
	if use := string(elem.GetAttribute("use")); use != "" {
		attr.Use = AttributeUse(use)
	}
	attr.Default = string(elem.GetAttribute("default"))
	attr.Fixed = string(elem.GetAttribute("fixed"))
	if typeName := string(elem.GetAttribute("type")); typeName != "" {
		attr.TypeName = p.parseQName(typeName)
	}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "simpleType" {
			attr.Type = p.parseAnonSimpleType(child)
		}
	}
	return attr
}

func (p *parser) parseAttributeGroup(elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}
	ag := &AttributeGroup{Name: p.qname(name)}
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "attribute" {
			if attr := p.parseAttribute(child); attr != nil {
				ag.Attributes = append(ag.Attributes, attr)
			}
		}
	}
	p.model.AttributeGroups[name] = ag
}

func (p *parser) parseImportOrInclude(elem xmldom.Element, isInclude bool) {
	// Imports/includes are recorded for the Loader to follow; Parse
	// itself never touches the filesystem.
	p.model.Imports = append(p.model.Imports, &Import{
		Namespace:      string(elem.GetAttribute("namespace")),
		SchemaLocation: string(elem.GetAttribute("schemaLocation")),
		IsInclude:      isInclude,
	})
}
