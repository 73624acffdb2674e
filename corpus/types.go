// Package corpus holds the value types shared by the candidate builder,
// the two selector strategies, and the coverage reporter: the
// already-materialized XMLSnippet, the intended TestPattern, and the
// CoveringArray produced by the pairwise strategy. Keeping them in one
// leaf package (rather than on pathenum or builder) avoids an import
// cycle between those two.
package corpus

import (
	"aqwari.net/xml/xmltree"

	"github.com/agentflare-ai/xsdcov/pathenum"
)

// Assignment maps a parameter path to its intended presence for one
// generated document. Paths absent from an Assignment fall back to the
// Candidate Builder's default: required-if-needed, absent-if-truly-optional.
type Assignment map[pathenum.Path]bool

// TestPattern is one intended XML document: an assignment of parameter
// paths to booleans, plus a CoveredPairs set for the (path, value) pairs
// it witnesses. The pairwise generator leaves CoveredPairs empty: it
// folds each pattern's pairs into its own global covered set instead.
type TestPattern struct {
	ID           string
	Assignments  Assignment
	CoveredPairs map[PairKey]bool
}

// PairKey identifies one witnessed joint assignment of two distinct
// parameters: PathA=ValA together with PathB=ValB in the same generated
// pattern.
// PathA is always the lexicographically smaller path, so each unordered
// parameter pair has one canonical key per (ValA, ValB) combination.
type PairKey struct {
	PathA, PathB pathenum.Path
	ValA, ValB   bool
}

// NewTestPattern creates an empty pattern with the given id.
func NewTestPattern(id string) *TestPattern {
	return &TestPattern{
		ID:           id,
		Assignments:  make(Assignment),
		CoveredPairs: make(map[PairKey]bool),
	}
}

// CoveringArray is the output of the Pairwise Generator: the parameter
// universe, the patterns chosen to cover it, the resulting coverage
// fraction, and its strength (always 2, pairwise).
type CoveringArray struct {
	Parameters []pathenum.Path
	Patterns   []*TestPattern
	Coverage   float64
	Strength   int
}

// XMLSnippet is an already-materialized candidate: its root element tree
// plus the set of paths it touched while being built, and the depth it was
// built at.
type XMLSnippet struct {
	Root          *xmltree.Element
	CoveredPaths  map[pathenum.Path]bool
	Depth         int
	IncludeOpt    bool
	ChoiceIndex   int
	SourcePattern *TestPattern // nil for set-cover candidates, set for pairwise-driven builds
}
