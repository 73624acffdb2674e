package pathenum

import (
	"sort"

	"github.com/agentflare-ai/xsdcov/schema"
)

// Config bounds the traversal. MaxDepth defaults to 10 if zero.
type Config struct {
	MaxDepth int
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return 10
	}
	return c.MaxDepth
}

// walker carries the mutable traversal state: the frozen-on-return
// Result, the active-frame cycle guard, and a monotonic choice-group
// sequence number. It is created fresh per Enumerate call; no
// package-level state survives between runs.
type walker struct {
	model  *schema.Model
	cfg    Config
	result *Result
	active map[Frame]bool
	seq    int
}

// Enumerate performs the single depth-first traversal that yields both
// the defined path universe and the optional-parameter universe for
// model, bounded by cfg.MaxDepth.
func Enumerate(model *schema.Model, cfg Config) *Result {
	w := &walker{
		model:  model,
		cfg:    cfg,
		result: newResult(),
		active: make(map[Frame]bool),
	}

	names := make([]string, 0, len(model.GlobalElements))
	for name := range model.GlobalElements {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		decl := model.GlobalElements[name]
		path := Root(name)
		w.result.addElementPath(path)
		w.descendElementType(decl, path, 0)
	}

	return w.result
}

// descendElementType resolves an element's type (inline or named) and
// descends into it if it is a complex type. Builtin and unresolved types
// terminate the subtree; unresolved type names are reported on the
// warning side-channel but do not abort enumeration of the rest of the
// schema.
func (w *walker) descendElementType(decl *schema.ElementDecl, path Path, depth int) {
	if depth >= w.cfg.maxDepth() {
		return
	}

	if decl.Type != nil {
		w.descendType(decl.Type, path, depth, "")
		return
	}
	if decl.TypeName.IsZero() {
		return // no type attribute and no inline type: nothing to descend into
	}
	if schema.IsBuiltin(decl.TypeName.Local) {
		return
	}
	t, ok := w.model.ResolveType(decl.TypeName.Local)
	if !ok {
		w.result.Warnings = append(w.result.Warnings, schema.Warning{
			Kind:    schema.WarnUnknownType,
			Message: "unresolved type reference " + decl.TypeName.String() + " at " + string(path),
		})
		return
	}
	w.descendType(t, path, depth, decl.TypeName.Local)
}

func (w *walker) descendType(t schema.Type, path Path, depth int, typeLocal string) {
	if typeLocal == "" {
		typeLocal = t.TypeName().Local
	}
	frame := Frame{Path: path, Type: typeLocal, Depth: depth}
	if w.active[frame] {
		return // cycle guard: this (path, type, depth) tuple is already on the stack
	}
	w.active[frame] = true
	defer delete(w.active, frame)

	switch ct := t.(type) {
	case *schema.ComplexType:
		w.descendComplexType(ct, path, depth)
	case *schema.SimpleType:
		// Simple types are leaves: no children, no attributes of their
		// own. Enumerations are the Value Synthesizer's concern.
	}
}

func (w *walker) descendComplexType(ct *schema.ComplexType, path Path, depth int) {
	for _, attr := range ct.Attributes {
		w.emitAttribute(attr, path)
	}
	for _, groupName := range ct.AttributeGroup {
		if ag, ok := w.model.AttributeGroups[groupName.Local]; ok {
			for _, attr := range ag.Attributes {
				w.emitAttribute(attr, path)
			}
		}
	}

	switch content := ct.Content.(type) {
	case *schema.ModelGroup:
		w.walkModelGroup(content, path, depth)
	case *schema.GroupRef:
		if mg, ok := w.model.Groups[content.Ref.Local]; ok {
			w.walkModelGroup(mg, path, depth)
		}
	case *schema.SimpleContent:
		if content.Extension != nil {
			w.descendExtension(content.Extension, path, depth)
		}
	case *schema.ComplexContent:
		if content.Extension != nil {
			w.descendExtension(content.Extension, path, depth)
		}
	}
}

// descendExtension walks an extension chain: the base type's contents
// come first, then the derived extension's own additions.
func (w *walker) descendExtension(ext *schema.Extension, path Path, depth int) {
	if !ext.Base.IsZero() && !schema.IsBuiltin(ext.Base.Local) {
		if baseType, ok := w.model.ResolveType(ext.Base.Local); ok {
			w.descendType(baseType, path, depth, ext.Base.Local)
		}
	}
	for _, attr := range ext.Attributes {
		w.emitAttribute(attr, path)
	}
	switch content := ext.Content.(type) {
	case *schema.ModelGroup:
		w.walkModelGroup(content, path, depth)
	case *schema.GroupRef:
		if mg, ok := w.model.Groups[content.Ref.Local]; ok {
			w.walkModelGroup(mg, path, depth)
		}
	}
}

func (w *walker) emitAttribute(attr *schema.AttributeDecl, ownerPath Path) {
	p := Attribute(ownerPath, attr.Name.Local)
	w.result.addAttributePath(p)
	if attr.Use == schema.OptionalUse {
		w.result.addItem(OptionalItem{
			Path:      p,
			Kind:      AttributeKind,
			Priority:  PriorityOptionalAttribute,
			MinOccurs: 0,
			MaxOccurs: 1,
		})
	}
}

func (w *walker) walkModelGroup(mg *schema.ModelGroup, parentPath Path, depth int) {
	var groupID string
	if mg.Kind == schema.ChoiceGroup {
		groupID = nextChoiceGroupID(&w.seq)
	}

	for _, particle := range mg.Particles {
		switch part := particle.(type) {
		case *schema.ElementDecl:
			w.walkElementParticle(part.Name.Local, part, nil, parentPath, depth, groupID)
		case *schema.ElementRef:
			global := w.model.GlobalElements[part.Ref.Local]
			w.walkElementParticle(part.Ref.Local, global, part, parentPath, depth, groupID)
		case *schema.GroupRef:
			if mg2, ok := w.model.Groups[part.Ref.Local]; ok {
				w.walkModelGroup(mg2, parentPath, depth)
			}
		case *schema.ModelGroup:
			w.walkModelGroup(part, parentPath, depth)
		case *schema.AnyElement:
			// xs:any has no fixed name: it contributes no path to the
			// defined-path universe, which holds only directly declared
			// or referenced elements.
		}
	}
}

// walkElementParticle handles both an inline ElementDecl (decl != nil,
// ref == nil) and an ElementRef (ref != nil, decl resolved from the global
// element table, which may be nil if unresolved).
func (w *walker) walkElementParticle(name string, decl *schema.ElementDecl, ref *schema.ElementRef, parentPath Path, depth int, choiceGroupID string) {
	if name == "" {
		return
	}
	path := Element(parentPath, name)
	w.result.addElementPath(path)

	minOcc, maxOcc := 1, 1
	if decl != nil {
		minOcc, maxOcc = decl.MinOcc, decl.MaxOcc
	}
	if ref != nil {
		minOcc, maxOcc = ref.MinOcc, ref.MaxOcc
	}

	if choiceGroupID != "" {
		w.result.addItem(OptionalItem{
			Path:          path,
			Kind:          ElementKind,
			Priority:      PriorityChoiceAlternative,
			MinOccurs:     minOcc,
			MaxOccurs:     maxOcc,
			ChoiceGroupID: choiceGroupID,
		})
		w.result.ChoiceGroups[choiceGroupID] = append(w.result.ChoiceGroups[choiceGroupID], path)
	} else if minOcc == 0 {
		w.result.addItem(OptionalItem{
			Path:      path,
			Kind:      ElementKind,
			Priority:  PriorityOptionalElement,
			MinOccurs: minOcc,
			MaxOccurs: maxOcc,
		})
	}

	if decl == nil {
		return
	}
	w.descendElementType(decl, path, depth+1)
}
