// Package builder materializes candidate XML documents: given a target
// parameter assignment (or a set-cover-style depth/include-optional/
// choice-index triple), synthesize a schema-valid XML document as an
// *xmltree.Element tree, with datatype-valid leaf and attribute values.
package builder

import (
	"encoding/xml"
	"fmt"

	"aqwari.net/xml/xmltree"

	"github.com/agentflare-ai/xsdcov/corpus"
	"github.com/agentflare-ai/xsdcov/pathenum"
	"github.com/agentflare-ai/xsdcov/schema"
)

// Config configures namespace declarations written onto the root element.
type Config struct {
	// Namespace overrides the default namespace written on the root
	// element. Empty means "use the schema model's target namespace".
	Namespace string
	// XSIPrefix, if set, causes the root to also carry
	// xmlns:<XSIPrefix>="http://www.w3.org/2001/XMLSchema-instance" and,
	// when SchemaLocation is also set, a <XSIPrefix>:schemaLocation
	// attribute.
	XSIPrefix      string
	SchemaLocation string
}

// Params parametrizes one Build call. Exactly one of IncludeOptional and
// Assignment governs optional-inclusion: Assignment non-nil means
// pairwise mode; nil means set-cover mode (IncludeOptional + ChoiceIndex
// apply).
type Params struct {
	DepthBound      int
	IncludeOptional bool
	ChoiceIndex     int
	Assignment      corpus.Assignment
}

// Builder is the Candidate Builder.
type Builder struct {
	model    *schema.Model
	universe *pathenum.Result
	cfg      Config
	synth    *Synthesizer
}

// New creates a Builder over model, consulting universe (the optional
// extractor's output) to decide whether an optional path is a parameter
// in the current run.
func New(model *schema.Model, universe *pathenum.Result, cfg Config) *Builder {
	return &Builder{model: model, universe: universe, cfg: cfg, synth: NewSynthesizer()}
}

// buildState carries the mutable per-call accumulator: the set of paths
// touched while building, and the Params governing this one Build call.
// Nothing here survives past a single Build invocation.
type buildState struct {
	covered map[pathenum.Path]bool
	params  Params
}

// Build materializes one XML document rooted at rootName.
func (b *Builder) Build(rootName string, params Params) (*corpus.XMLSnippet, error) {
	decl, ok := b.model.GlobalElements[rootName]
	if !ok {
		return nil, fmt.Errorf("unknown root element %q", rootName)
	}
	st := &buildState{covered: make(map[pathenum.Path]bool), params: params}
	path := pathenum.Root(rootName)
	root := b.buildElement(decl, rootName, path, 0, st)
	b.decorateRoot(root)

	return &corpus.XMLSnippet{
		Root:         root,
		CoveredPaths: st.covered,
		Depth:        params.DepthBound,
		IncludeOpt:   params.IncludeOptional,
		ChoiceIndex:  params.ChoiceIndex,
	}, nil
}

func (b *Builder) decorateRoot(root *xmltree.Element) {
	ns := b.cfg.Namespace
	if ns == "" {
		ns = b.model.TargetNamespace
	}
	var attrs []xml.Attr
	if ns != "" {
		attrs = append(attrs, attr("xmlns", ns))
	}
	if b.cfg.XSIPrefix != "" {
		attrs = append(attrs, attr("xmlns:"+b.cfg.XSIPrefix, "http://www.w3.org/2001/XMLSchema-instance"))
		if b.cfg.SchemaLocation != "" {
			attrs = append(attrs, attr(b.cfg.XSIPrefix+":schemaLocation", b.cfg.SchemaLocation))
		}
	}
	root.StartElement.Attr = append(attrs, root.StartElement.Attr...)
}

// resolveTypeRef resolves an inline type or a named TypeRef, returning
// either the resolved schema.Type, or (when it names a builtin, or a name
// that could not be resolved at all) the bare local name to hand the
// Value Synthesizer.
func (b *Builder) resolveTypeRef(inline schema.Type, typeName schema.QName) (t schema.Type, builtinLocal string) {
	if inline != nil {
		return inline, ""
	}
	if typeName.IsZero() {
		return nil, ""
	}
	if schema.IsBuiltin(typeName.Local) {
		return nil, typeName.Local
	}
	if rt, ok := b.model.ResolveType(typeName.Local); ok {
		return rt, ""
	}
	return nil, typeName.Local
}

// shouldInclude decides presence for a single optional path: governed by
// the assignment in pairwise mode, by IncludeOptional in set-cover mode,
// and a path that is not a parameter at all counts as structurally
// required for this run.
func (b *Builder) shouldInclude(path pathenum.Path, minOcc int, st *buildState) bool {
	if minOcc != 0 {
		return true
	}
	if st.params.Assignment != nil {
		if v, ok := st.params.Assignment[path]; ok {
			return v
		}
		if _, isParam := b.universe.Items[path]; !isParam {
			return true
		}
		return false
	}
	if st.params.IncludeOptional {
		return true
	}
	if _, isParam := b.universe.Items[path]; !isParam {
		return true
	}
	return false
}

// stubAt returns whether depth has exceeded the requested DepthBound,
// and the hard ceiling (DepthBound+2, the two further stub levels of
// required structure) beyond which nothing more is emitted at all.
func (st *buildState) stubAt(depth int) (stub bool, hardStop bool) {
	bound := st.params.DepthBound
	if bound <= 0 {
		bound = 10
	}
	return depth > bound, depth > bound+2
}

func (b *Builder) buildElement(decl *schema.ElementDecl, localName string, path pathenum.Path, depth int, st *buildState) *xmltree.Element {
	st.covered[path] = true
	el := elem(localName, nil)

	t, builtinLocal := b.resolveTypeRef(decl.Type, decl.TypeName)
	switch tt := t.(type) {
	case *schema.ComplexType:
		stub, hardStop := st.stubAt(depth)
		if hardStop {
			return &el
		}
		b.buildComplexType(tt, &el, path, depth, st, stub)
	case *schema.SimpleType:
		el.Content = []byte(b.synth.ValueFor(b.model, tt.QName.Local, tt))
	default:
		el.Content = []byte(b.synth.Value(builtinLocal, nil))
	}
	return &el
}

func (b *Builder) buildComplexType(ct *schema.ComplexType, el *xmltree.Element, path pathenum.Path, depth int, st *buildState, stub bool) {
	for _, a := range ct.Attributes {
		b.applyAttribute(a, el, path, st, stub)
	}
	for _, gname := range ct.AttributeGroup {
		if ag, ok := b.model.AttributeGroups[gname.Local]; ok {
			for _, a := range ag.Attributes {
				b.applyAttribute(a, el, path, st, stub)
			}
		}
	}

	switch content := ct.Content.(type) {
	case *schema.ModelGroup:
		b.buildModelGroup(content, el, path, depth, st, stub)
	case *schema.GroupRef:
		if mg, ok := b.model.Groups[content.Ref.Local]; ok {
			b.buildModelGroup(mg, el, path, depth, st, stub)
		}
	case *schema.SimpleContent:
		if content.Extension != nil {
			el.Content = []byte(b.synth.Value(content.Extension.Base.Local, nil))
			for _, a := range content.Extension.Attributes {
				b.applyAttribute(a, el, path, st, stub)
			}
		}
	case *schema.ComplexContent:
		if content.Extension != nil {
			b.buildExtension(content.Extension, el, path, depth, st, stub)
		}
	}
}

// buildExtension emits an extension chain: base contents first, then the
// derived type's own additions.
func (b *Builder) buildExtension(ext *schema.Extension, el *xmltree.Element, path pathenum.Path, depth int, st *buildState, stub bool) {
	if !ext.Base.IsZero() && !schema.IsBuiltin(ext.Base.Local) {
		if baseType, ok := b.model.ResolveType(ext.Base.Local); ok {
			if baseCT, ok := baseType.(*schema.ComplexType); ok {
				b.buildComplexType(baseCT, el, path, depth, st, stub)
			}
		}
	}
	for _, a := range ext.Attributes {
		b.applyAttribute(a, el, path, st, stub)
	}
	switch content := ext.Content.(type) {
	case *schema.ModelGroup:
		b.buildModelGroup(content, el, path, depth, st, stub)
	case *schema.GroupRef:
		if mg, ok := b.model.Groups[content.Ref.Local]; ok {
			b.buildModelGroup(mg, el, path, depth, st, stub)
		}
	}
}

func (b *Builder) applyAttribute(a *schema.AttributeDecl, el *xmltree.Element, ownerPath pathenum.Path, st *buildState, stub bool) {
	if a.Use == schema.ProhibitedUse {
		return
	}
	p := pathenum.Attribute(ownerPath, a.Name.Local)
	required := a.Use == schema.RequiredUse
	include := required
	if !required {
		if stub {
			include = false
		} else {
			include = b.shouldInclude(p, 0, st)
		}
	}
	if !include {
		return
	}
	st.covered[p] = true

	t, builtinLocal := b.resolveTypeRef(a.Type, a.TypeName)
	var value string
	if simple, ok := t.(*schema.SimpleType); ok {
		value = b.synth.ValueFor(b.model, simple.QName.Local, simple)
	} else {
		value = b.synth.Value(builtinLocal, nil)
	}
	el.StartElement.Attr = append(el.StartElement.Attr, attr(a.Name.Local, value))
}

func (b *Builder) buildModelGroup(mg *schema.ModelGroup, el *xmltree.Element, parentPath pathenum.Path, depth int, st *buildState, stub bool) {
	if mg.Kind == schema.ChoiceGroup {
		idx := b.selectChoiceIndex(mg, parentPath, st)
		if idx >= 0 && idx < len(mg.Particles) {
			b.buildParticle(mg.Particles[idx], el, parentPath, depth, st, stub, true)
		}
		return
	}
	for _, particle := range mg.Particles {
		b.buildParticle(particle, el, parentPath, depth, st, stub, false)
	}
}

// selectChoiceIndex picks exactly one choice alternative: the set-cover
// strategy takes alternative i mod N; the pairwise strategy takes
// whichever alternative's path is true in the assignment, falling back
// to the first.
func (b *Builder) selectChoiceIndex(mg *schema.ModelGroup, parentPath pathenum.Path, st *buildState) int {
	n := len(mg.Particles)
	if n == 0 {
		return -1
	}
	if st.params.Assignment != nil {
		for i, particle := range mg.Particles {
			if p, ok := alternativePath(particle, parentPath); ok {
				if v, ok := st.params.Assignment[p]; ok && v {
					return i
				}
			}
		}
		return 0
	}
	return st.params.ChoiceIndex % n
}

func alternativePath(particle schema.Particle, parentPath pathenum.Path) (pathenum.Path, bool) {
	switch part := particle.(type) {
	case *schema.ElementDecl:
		return pathenum.Element(parentPath, part.Name.Local), true
	case *schema.ElementRef:
		return pathenum.Element(parentPath, part.Ref.Local), true
	}
	return "", false
}

func (b *Builder) buildParticle(particle schema.Particle, el *xmltree.Element, parentPath pathenum.Path, depth int, st *buildState, stub bool, forced bool) {
	switch part := particle.(type) {
	case *schema.ElementDecl:
		b.maybeBuildElementChild(part.Name.Local, part, part.MinOcc, el, parentPath, depth, st, stub, forced)
	case *schema.ElementRef:
		global := b.model.GlobalElements[part.Ref.Local]
		if skel, ok := ExternalSkeletons[part.Ref.Namespace]; ok && global == nil {
			childPath := pathenum.Element(parentPath, part.Ref.Local)
			if forced || part.MinOcc != 0 || b.shouldInclude(childPath, part.MinOcc, st) {
				st.covered[childPath] = true
				el.Children = append(el.Children, *skel())
			}
			return
		}
		b.maybeBuildElementChild(part.Ref.Local, global, part.MinOcc, el, parentPath, depth, st, stub, forced)
	case *schema.GroupRef:
		if mg2, ok := b.model.Groups[part.Ref.Local]; ok {
			b.buildModelGroup(mg2, el, parentPath, depth, st, stub)
		}
	case *schema.ModelGroup:
		b.buildModelGroup(part, el, parentPath, depth, st, stub)
	case *schema.AnyElement:
		// xs:any carries no fixed name: nothing structurally required.
	}
}

func (b *Builder) maybeBuildElementChild(name string, decl *schema.ElementDecl, minOcc int, el *xmltree.Element, parentPath pathenum.Path, depth int, st *buildState, stub bool, forced bool) {
	if name == "" {
		return
	}
	childPath := pathenum.Element(parentPath, name)

	include := forced
	if !include {
		if stub {
			include = minOcc != 0
		} else {
			include = b.shouldInclude(childPath, minOcc, st)
		}
	}
	if !include {
		return
	}

	if decl == nil {
		st.covered[childPath] = true
		empty := elem(name, nil)
		el.Children = append(el.Children, empty)
		return
	}

	child := b.buildElement(decl, name, childPath, depth+1, st)
	el.Children = append(el.Children, *child)
}
