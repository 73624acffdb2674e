// Package schema holds the compiled representation of an XSD schema:
// named types, global element declarations, and the content models that
// connect them. Parsing is handled by parse.go and loader.go; this file
// only declares the data model.
package schema

import "fmt"

// XSDNamespace is the XML Schema namespace URI.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// QName is a namespace-qualified name.
type QName struct {
	Namespace string
	Local     string
}

func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Namespace, q.Local)
}

func (q QName) IsZero() bool { return q == QName{} }

// Model is the compiled schema: target namespace, a type cache keyed by
// local name, the global element table, and the set of imported/included
// schema paths already processed. A Model is built once by a Loader and
// is read-only thereafter.
type Model struct {
	TargetNamespace string
	TypeCache       map[string]Type          // local type name -> definition
	GlobalElements  map[string]*ElementDecl  // local element name -> declaration
	AttributeGroups map[string]*AttributeGroup
	Groups          map[string]*ModelGroup
	Imports         []*Import
	ImportedSchemas map[string]struct{} // absolute paths already processed
}

func newModel() *Model {
	return &Model{
		TypeCache:       make(map[string]Type),
		GlobalElements:  make(map[string]*ElementDecl),
		AttributeGroups: make(map[string]*AttributeGroup),
		Groups:          make(map[string]*ModelGroup),
		ImportedSchemas: make(map[string]struct{}),
	}
}

// ResolveType resolves a local type name against the model's type cache.
// It never consults the builtin whitelist: callers check IsBuiltin
// first, since a type name is either a builtin or must resolve in
// TypeCache.
func (m *Model) ResolveType(local string) (Type, bool) {
	t, ok := m.TypeCache[local]
	return t, ok
}

// Type is the interface implemented by SimpleType and ComplexType. A
// TypeRef that is not a builtin resolves to one of these via Model.ResolveType.
type Type interface {
	TypeName() QName
	isType()
}

// SimpleType is an XSD simpleType: a restriction, list, or union over a
// base type. Only Restriction carries facets the Value Synthesizer cares
// about (enumerations); List and Union are modeled structurally so
// descent/path-enumeration can still walk into them, though in practice a
// leaf of list/union type terminates descent just like a builtin.
type SimpleType struct {
	QName       QName
	Restriction *Restriction
	List        *List
	Union       *Union
}

func (s *SimpleType) TypeName() QName { return s.QName }
func (*SimpleType) isType()           {}

// ComplexType is an XSD complexType.
type ComplexType struct {
	QName          QName
	Content        Content
	Attributes     []*AttributeDecl
	AttributeGroup []QName
	AnyAttribute   *AnyAttribute
	Mixed          bool
	Abstract       bool
}

func (c *ComplexType) TypeName() QName { return c.QName }
func (*ComplexType) isType()           {}

// Content is the content model of a complex type: a ModelGroup directly,
// or simpleContent/complexContent wrapping an extension/restriction chain.
type Content interface {
	isContent()
}

// SimpleContent is simpleContent: text content plus attributes, possibly
// extending a base simple type.
type SimpleContent struct {
	Base      QName
	Extension *Extension
}

func (*SimpleContent) isContent() {}

// ComplexContent is complexContent: an extension or restriction of a base
// complex type's content model.
type ComplexContent struct {
	Mixed     bool
	Extension *Extension
}

func (*ComplexContent) isContent() {}

// ModelGroup is a sequence/choice/all content container.
type ModelGroup struct {
	Kind      ModelGroupKind
	Particles []Particle
	MinOcc    int
	MaxOcc    int
}

func (*ModelGroup) isContent() {}

type ModelGroupKind string

const (
	SequenceGroup ModelGroupKind = "sequence"
	ChoiceGroup   ModelGroupKind = "choice"
	AllGroup      ModelGroupKind = "all"
)

// Particle is a member of a ModelGroup's content: an element declaration
// (inline), an element reference, a nested group, a group reference, or a
// wildcard.
type Particle interface {
	MinOccurs() int
	MaxOccurs() int
	isParticle()
}

func (e *ElementDecl) MinOccurs() int { return e.MinOcc }
func (e *ElementDecl) MaxOccurs() int { return e.MaxOcc }
func (*ElementDecl) isParticle()      {}

// ElementRef is a <xsd:element ref="..."/> particle.
type ElementRef struct {
	Ref    QName
	MinOcc int
	MaxOcc int
}

func (r *ElementRef) MinOccurs() int { return r.MinOcc }
func (r *ElementRef) MaxOccurs() int { return r.MaxOcc }
func (*ElementRef) isParticle()      {}

// GroupRef is a <xsd:group ref="..."/> particle.
type GroupRef struct {
	Ref    QName
	MinOcc int
	MaxOcc int
}

func (r *GroupRef) MinOccurs() int { return r.MinOcc }
func (r *GroupRef) MaxOccurs() int { return r.MaxOcc }
func (*GroupRef) isParticle()      {}

// GroupRef also stands directly as a complex type's Content when the type
// body is a single <xsd:group ref="..."/> rather than an inline ModelGroup.
func (*GroupRef) isContent() {}

func (m *ModelGroup) MinOccurs() int { return m.MinOcc }
func (m *ModelGroup) MaxOccurs() int { return m.MaxOcc }
func (*ModelGroup) isParticle()      {}

// AnyElement is an xs:any wildcard particle.
type AnyElement struct {
	Namespace string
	MinOcc    int
	MaxOcc    int
}

func (a *AnyElement) MinOccurs() int { return a.MinOcc }
func (a *AnyElement) MaxOccurs() int { return a.MaxOcc }
func (*AnyElement) isParticle()      {}

// ElementDecl is an element declaration, global or inline.
type ElementDecl struct {
	Name     QName
	Type     Type
	TypeName QName // unresolved type name as written (builtin or local)
	MinOcc   int
	MaxOcc   int
	Nillable bool
	Abstract bool
}

// AttributeUse mirrors the XSD use attribute.
type AttributeUse string

const (
	OptionalUse   AttributeUse = "optional"
	RequiredUse   AttributeUse = "required"
	ProhibitedUse AttributeUse = "prohibited"
)

// AttributeDecl is an attribute declaration.
type AttributeDecl struct {
	Name     QName
	Type     Type
	TypeName QName
	Use      AttributeUse
	Default  string
	Fixed    string
}

// AttributeGroup is a reusable group of attribute declarations.
type AttributeGroup struct {
	Name       QName
	Attributes []*AttributeDecl
}

// Restriction captures the facets a rewrite into XML needs: enumerations
// (for the Value Synthesizer) plus length/pattern facets are parsed but
// unused by the generator today, kept so the model stays a faithful
// reflection of the schema rather than a lossy projection.
type Restriction struct {
	Base         QName
	Enumerations []string
	Pattern      string
	MinLength    int
	MaxLength    int
	HasLength    bool
}

// List is an XSD list simple type.
type List struct {
	ItemType QName
}

// Union is an XSD union simple type.
type Union struct {
	MemberTypes []QName
}

// Extension is a complexContent/simpleContent extension base.
type Extension struct {
	Base       QName
	Attributes []*AttributeDecl
	Content    Content
}

// AnyAttribute is an xs:anyAttribute wildcard.
type AnyAttribute struct {
	Namespace string
}

// Import is an xs:import or xs:include directive.
type Import struct {
	Namespace      string
	SchemaLocation string
	IsInclude      bool
}

// Warning is a non-fatal condition surfaced on a side channel: import
// resolution failures, unknown type references, and the like. Nothing
// that produces a Warning aborts the load.
type Warning struct {
	Kind    string
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Kind, w.Message) }

const (
	WarnImportResolution = "ImportResolutionWarning"
	WarnUnknownType      = "UnknownTypeReference"
)

// LoadError is the one fatal load failure: the root schema itself could
// not be parsed or located.
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema load error at %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
