// Package coverage diffs the defined path universe against the paths a
// corpus of XML documents actually used, classifies the difference, and
// reports percentages.
package coverage

import (
	"sort"
	"strings"

	"github.com/agentflare-ai/xsdcov/builder"
	"github.com/agentflare-ai/xsdcov/pathenum"
)

// Category is the coverage breakdown for one path kind (elements or
// attributes): what the schema defines that the corpus touched, what it
// defines that nothing touched, and what the corpus touched that the
// schema never defined.
type Category struct {
	Covered         []pathenum.Path
	Unused          []pathenum.Path
	UndefinedUsed   []pathenum.Path
	CoveragePercent float64
}

// Report is the Coverage Reporter's full output.
type Report struct {
	Elements        Category
	Attributes      Category
	External        []pathenum.Path // undefined-used paths matched to a known external-namespace skeleton
	TrulyUndefined  []pathenum.Path // undefined-used paths with no such match, always a bug or non-conforming input
	CombinedPercent float64
}

// Compute builds a Report from universe (the defined path side, from the
// Path Enumerator) and the used element/attribute path sets a corpus of
// generated or hand-written XML documents actually exercised.
func Compute(universe *pathenum.Result, usedElements, usedAttributes map[pathenum.Path]bool) *Report {
	elements := computeCategory(universe.DefinedElementPaths, usedElements)
	attributes := computeCategory(universe.DefinedAttributePaths, usedAttributes)

	var external, trulyUndefined []pathenum.Path
	for _, p := range append(append([]pathenum.Path{}, elements.UndefinedUsed...), attributes.UndefinedUsed...) {
		if isExternal(p) {
			external = append(external, p)
		} else {
			trulyUndefined = append(trulyUndefined, p)
		}
	}
	sort.Slice(external, func(i, j int) bool { return external[i] < external[j] })
	sort.Slice(trulyUndefined, func(i, j int) bool { return trulyUndefined[i] < trulyUndefined[j] })

	definedTotal := len(universe.DefinedElementPaths) + len(universe.DefinedAttributePaths)
	coveredTotal := len(elements.Covered) + len(attributes.Covered)
	combined := 1.0
	if definedTotal > 0 {
		combined = float64(coveredTotal) / float64(definedTotal)
	}

	return &Report{
		Elements:        elements,
		Attributes:      attributes,
		External:        external,
		TrulyUndefined:  trulyUndefined,
		CombinedPercent: combined,
	}
}

func computeCategory(defined, used map[pathenum.Path]bool) Category {
	var covered, unused, undefinedUsed []pathenum.Path
	for p := range defined {
		if used[p] {
			covered = append(covered, p)
		} else {
			unused = append(unused, p)
		}
	}
	for p := range used {
		if !defined[p] {
			undefinedUsed = append(undefinedUsed, p)
		}
	}
	sort.Slice(covered, func(i, j int) bool { return covered[i] < covered[j] })
	sort.Slice(unused, func(i, j int) bool { return unused[i] < unused[j] })
	sort.Slice(undefinedUsed, func(i, j int) bool { return undefinedUsed[i] < undefinedUsed[j] })

	percent := 1.0
	if len(defined) > 0 {
		percent = float64(len(covered)) / float64(len(defined))
	}
	return Category{Covered: covered, Unused: unused, UndefinedUsed: undefinedUsed, CoveragePercent: percent}
}

// isExternal reports whether path falls inside a region the builder
// would have emitted from a registered external-namespace skeleton.
// Sharing builder.ExternalPathMarkers keeps the builder and the reporter
// from drifting apart on what "external" means.
func isExternal(path pathenum.Path) bool {
	s := string(path)
	for _, marker := range builder.ExternalPathMarkers {
		if strings.HasSuffix(s, marker) || strings.Contains(s, marker+"/") || strings.Contains(s, marker+"@") {
			return true
		}
	}
	return false
}
