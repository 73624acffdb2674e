// Package selector implements the set-cover generation strategy: greedy,
// depth-penalized selection of builder-generated candidates to cover a
// target fraction of the defined path universe.
package selector

import (
	"sort"

	"github.com/agentflare-ai/xsdcov/builder"
	"github.com/agentflare-ai/xsdcov/corpus"
	"github.com/agentflare-ai/xsdcov/pathenum"
	"github.com/agentflare-ai/xsdcov/schema"
)

// Config bounds the selector and its candidate generation step. The
// depth-penalty constant and the snippet cap are fields here rather than
// hardcoded constants; the per-depth variants come from the fixed
// variants table below.
type Config struct {
	// Theta is the target coverage fraction at which selection may stop
	// early, even if uncovered paths remain.
	Theta float64
	// MaxFiles caps the number of snippets the greedy loop will select.
	MaxFiles int
	// MaxGenDepth bounds the depth values candidate generation tries,
	// d ∈ [1, MaxGenDepth].
	MaxGenDepth int
	// MaxSnippets caps how many candidates are materialized in total,
	// across all roots and depths.
	MaxSnippets int
	// DepthPenalty discounts deep candidates in the scoring formula
	// |covered ∩ uncovered| × 1/(1 + DepthPenalty·depth).
	DepthPenalty float64
}

func (c Config) withDefaults() Config {
	if c.Theta <= 0 {
		c.Theta = 0.95
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = 50
	}
	if c.MaxGenDepth <= 0 {
		c.MaxGenDepth = 5
	}
	if c.MaxSnippets <= 0 {
		c.MaxSnippets = 200
	}
	if c.DepthPenalty <= 0 {
		c.DepthPenalty = 0.1
	}
	return c
}

// Result is the Set-Cover Selector's output.
type Result struct {
	Selected      []*corpus.XMLSnippet
	Coverage      float64
	TargetReached bool
}

// variant is one (include_optional, choice_index) pairing tried at every
// depth for every root: two baseline variants (all-optional /
// no-optional at choice 0) plus two further choice-index values.
var variants = []struct {
	includeOptional bool
	choiceIndex     int
}{
	{true, 0},
	{false, 0},
	{true, 1},
	{true, 2},
}

// Select runs the greedy set-cover algorithm over every candidate
// generated from model's global elements.
func Select(model *schema.Model, universe *pathenum.Result, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	b := builder.New(model, universe, builder.Config{})

	roots := make([]string, 0, len(model.GlobalElements))
	for name := range model.GlobalElements {
		roots = append(roots, name)
	}
	sort.Strings(roots)

	var candidates []*corpus.XMLSnippet
	for _, root := range roots {
		for depth := 1; depth <= cfg.MaxGenDepth; depth++ {
			for _, v := range variants {
				if len(candidates) >= cfg.MaxSnippets {
					break
				}
				snippet, err := b.Build(root, builder.Params{
					DepthBound:      depth,
					IncludeOptional: v.includeOptional,
					ChoiceIndex:     v.choiceIndex,
				})
				if err != nil {
					continue
				}
				candidates = append(candidates, snippet)
			}
		}
	}

	uncovered := make(map[pathenum.Path]bool, len(universe.DefinedElementPaths)+len(universe.DefinedAttributePaths))
	for p := range universe.DefinedElementPaths {
		uncovered[p] = true
	}
	for p := range universe.DefinedAttributePaths {
		uncovered[p] = true
	}
	total := len(uncovered)

	var selected []*corpus.XMLSnippet
	targetReached := false
	for total > 0 && len(uncovered) > 0 && len(selected) < cfg.MaxFiles {
		bestIdx := -1
		bestScore := 0.0
		for i, cand := range candidates {
			if cand == nil {
				continue
			}
			gain := intersectionSize(cand.CoveredPaths, uncovered)
			if gain == 0 {
				continue
			}
			score := float64(gain) / (1 + cfg.DepthPenalty*float64(cand.Depth))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			break
		}
		best := candidates[bestIdx]
		candidates[bestIdx] = nil
		selected = append(selected, best)
		for p := range best.CoveredPaths {
			delete(uncovered, p)
		}
		if total > 0 && float64(total-len(uncovered))/float64(total) >= cfg.Theta {
			targetReached = true
			break
		}
	}

	coverage := 1.0
	if total > 0 {
		coverage = float64(total-len(uncovered)) / float64(total)
	}
	if coverage >= cfg.Theta {
		targetReached = true
	}

	return &Result{Selected: selected, Coverage: coverage, TargetReached: targetReached}, nil
}

func intersectionSize(covered map[pathenum.Path]bool, uncovered map[pathenum.Path]bool) int {
	n := 0
	for p := range covered {
		if uncovered[p] {
			n++
		}
	}
	return n
}
