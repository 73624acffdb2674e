// Package pathenum enumerates the element and attribute paths a schema
// defines, and extracts the optional-parameter universe (optional
// elements, optional attributes, choice alternatives), as a single
// depth-first traversal over a schema.Model, since both consume the exact
// same walk.
package pathenum

import (
	"fmt"
	"sort"

	"github.com/agentflare-ai/xsdcov/schema"
)

// Path is the stable string key identifying a position in a schema-valid
// XML document: "/Name(/Name)*" for elements, "<element-path>@Name" for
// attributes. Equality is exact string equality.
type Path string

// Element builds a child element path from a parent path and local name.
func Element(parent Path, name string) Path {
	return Path(string(parent) + "/" + name)
}

// Root builds a root element path.
func Root(name string) Path { return Path("/" + name) }

// Attribute builds an attribute path from its owning element's path.
func Attribute(elementPath Path, name string) Path {
	return Path(string(elementPath) + "@" + name)
}

// Frame is the recursion cycle guard: a tuple of current path, type
// name, and depth. A frame already active on the current descent must
// not be re-entered.
type Frame struct {
	Path  Path
	Type  string
	Depth int
}

// Kind distinguishes an OptionalItem's position class.
type Kind int

const (
	ElementKind Kind = iota
	AttributeKind
)

func (k Kind) String() string {
	if k == AttributeKind {
		return "attribute"
	}
	return "element"
}

// OptionalItem is a single parameter over which combinatorial coverage is
// measured: an optional element, an optional attribute, or one choice
// alternative. Two items are equal iff their paths are equal.
type OptionalItem struct {
	Path          Path
	Kind          Kind
	Priority      int
	MinOccurs     int
	MaxOccurs     int
	ChoiceGroupID string // empty if not part of a choice
}

// Default priorities per item class; choice alternatives rank highest so
// parameter capping keeps them longest.
const (
	PriorityOptionalElement   = 5
	PriorityOptionalAttribute = 4
	PriorityChoiceAlternative = 7
)

// Result is the frozen output of a single Enumerate pass: the defined path
// universe (Path Enumerator) plus the optional-parameter universe
// (Optional Extractor), computed together since they share one traversal.
type Result struct {
	DefinedElementPaths   map[Path]bool
	DefinedAttributePaths map[Path]bool
	Items                 map[Path]OptionalItem
	ChoiceGroups          map[string][]Path // group id -> member paths, in discovery order
	Warnings              []schema.Warning
}

func newResult() *Result {
	return &Result{
		DefinedElementPaths:   make(map[Path]bool),
		DefinedAttributePaths: make(map[Path]bool),
		Items:                 make(map[Path]OptionalItem),
		ChoiceGroups:          make(map[string][]Path),
	}
}

// Elements returns the optional-element items, sorted by path for
// deterministic iteration.
func (r *Result) Elements() []OptionalItem { return r.itemsOfKind(ElementKind) }

// Attributes returns the optional-attribute items (choice alternatives are
// reported under Elements, as they are always element particles here).
func (r *Result) Attributes() []OptionalItem { return r.itemsOfKind(AttributeKind) }

func (r *Result) itemsOfKind(k Kind) []OptionalItem {
	out := make([]OptionalItem, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Kind == k {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// AllItems returns every OptionalItem (elements, attributes, and choice
// alternatives alike) sorted by path.
func (r *Result) AllItems() []OptionalItem {
	out := make([]OptionalItem, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ChoiceGroupIDs returns the set of choice group ids, sorted.
func (r *Result) ChoiceGroupIDs() []string {
	out := make([]string, 0, len(r.ChoiceGroups))
	for id := range r.ChoiceGroups {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Result) addElementPath(p Path)   { r.DefinedElementPaths[p] = true }
func (r *Result) addAttributePath(p Path) { r.DefinedAttributePaths[p] = true }

// addItem registers an optional parameter, preferring a choice-group
// membership over a plain optional-element registration if the same path
// is reached both ways (e.g. a minOccurs=0 element that also happens to be
// a choice alternative): choice mutual-exclusion is the stronger
// constraint and must not be lost.
func (r *Result) addItem(it OptionalItem) {
	if existing, ok := r.Items[it.Path]; ok && existing.ChoiceGroupID != "" && it.ChoiceGroupID == "" {
		return
	}
	r.Items[it.Path] = it
}

func nextChoiceGroupID(seq *int) string {
	*seq++
	return fmt.Sprintf("choice-%d", *seq)
}
