// Package pairwise implements the pairwise generation strategy: a
// greedy, randomized construction of a 2-way covering array over the
// optional-parameter universe, respecting choice-group mutual exclusion.
package pairwise

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/agentflare-ai/xsdcov/corpus"
	"github.com/agentflare-ai/xsdcov/pathenum"
)

// Config bounds the generator. The candidates-per-round count, the
// parameter cap, and the sampling threshold are fields here rather than
// hardcoded constants.
type Config struct {
	MaxPatterns        int
	MaxParameters      int
	CandidatesPerRound int // K
	SampleThreshold    int // candidate pair-count above which coverage is estimated by sampling
	SampleSize         int
	Seed               int64
}

func (c Config) withDefaults() Config {
	if c.MaxPatterns <= 0 {
		c.MaxPatterns = 200
	}
	if c.MaxParameters <= 0 {
		c.MaxParameters = 500
	}
	if c.CandidatesPerRound <= 0 {
		c.CandidatesPerRound = 40
	}
	if c.SampleThreshold <= 0 {
		c.SampleThreshold = 100000
	}
	if c.SampleSize <= 0 {
		c.SampleSize = 10000
	}
	return c
}

// parameter is one kept path, with its choice-group membership (empty if
// none) carried alongside for the choice-adjustment step.
type parameter struct {
	path          pathenum.Path
	choiceGroupID string
}

// Generate builds a CoveringArray over universe's optional-parameter items.
func Generate(universe *pathenum.Result, cfg Config) *corpus.CoveringArray {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	params := selectParameters(universe, cfg.MaxParameters)
	groupMembers := groupIndices(params)
	n := len(params)

	paths := make([]pathenum.Path, n)
	for i, p := range params {
		paths[i] = p.path
	}

	if n == 0 {
		return &corpus.CoveringArray{Parameters: paths, Strength: 2, Coverage: 1.0}
	}

	total := totalPairCount(n, groupMembers)
	covered := make(map[corpus.PairKey]bool)

	var patterns []*corpus.TestPattern

	allTrue := make([]bool, n)
	for i := range allTrue {
		allTrue[i] = true
	}
	adjustChoices(allTrue, groupMembers, rng)
	patterns = append(patterns, addPattern("seed-all-true", params, allTrue, covered))

	if cfg.MaxPatterns > 1 {
		allFalse := make([]bool, n)
		patterns = append(patterns, addPattern("seed-all-false", params, allFalse, covered))
	}

	for len(covered) < total && len(patterns) < cfg.MaxPatterns {
		bestAssignment, bestGain := bestOfRound(params, groupMembers, covered, total, cfg, rng)
		if bestGain <= 0 {
			break
		}
		patterns = append(patterns, addPattern(fmt.Sprintf("pattern-%d", len(patterns)+1), params, bestAssignment, covered))
	}

	coverage := 1.0
	if total > 0 {
		coverage = float64(len(covered)) / float64(total)
	}

	return &corpus.CoveringArray{
		Parameters: paths,
		Patterns:   patterns,
		Coverage:   coverage,
		Strength:   2,
	}
}

// selectParameters takes universe's full item set, sorted by descending
// priority then ascending path for determinism, truncated to maxParams
// so very large schemas stay tractable.
func selectParameters(universe *pathenum.Result, maxParams int) []parameter {
	items := universe.AllItems()
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].Path < items[j].Path
	})
	if len(items) > maxParams {
		items = items[:maxParams]
	}
	out := make([]parameter, len(items))
	for i, it := range items {
		out[i] = parameter{path: it.Path, choiceGroupID: it.ChoiceGroupID}
	}
	return out
}

func groupIndices(params []parameter) map[string][]int {
	groups := make(map[string][]int)
	for i, p := range params {
		if p.choiceGroupID == "" {
			continue
		}
		groups[p.choiceGroupID] = append(groups[p.choiceGroupID], i)
	}
	return groups
}

// sameGroup reports whether i and j belong to the same choice group.
func sameGroup(params []parameter, i, j int) bool {
	return params[i].choiceGroupID != "" && params[i].choiceGroupID == params[j].choiceGroupID
}

// totalPairCount counts the target pair universe: 4 value combinations
// per unrelated unordered pair, 3 per choice-sibling pair (the
// (true,true) combination is structurally excluded for siblings).
func totalPairCount(n int, groupMembers map[string][]int) int {
	siblingPairs := 0
	for _, members := range groupMembers {
		k := len(members)
		siblingPairs += k * (k - 1) / 2
	}
	allPairs := n * (n - 1) / 2
	return (allPairs-siblingPairs)*4 + siblingPairs*3
}

// adjustChoices enforces choice-group mutual exclusion in place: if more
// than one member of a group is true, a single deterministic
// (seeded-random) member is retained and the rest are set false.
func adjustChoices(assignment []bool, groupMembers map[string][]int, rng *rand.Rand) {
	groupIDs := make([]string, 0, len(groupMembers))
	for id := range groupMembers {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	for _, id := range groupIDs {
		members := groupMembers[id]
		var trueMembers []int
		for _, idx := range members {
			if assignment[idx] {
				trueMembers = append(trueMembers, idx)
			}
		}
		if len(trueMembers) <= 1 {
			continue
		}
		keep := trueMembers[rng.Intn(len(trueMembers))]
		for _, idx := range trueMembers {
			if idx != keep {
				assignment[idx] = false
			}
		}
	}
}

// bestOfRound draws cfg.CandidatesPerRound random assignments and returns
// whichever contributes the most new pairs against covered.
func bestOfRound(params []parameter, groupMembers map[string][]int, covered map[corpus.PairKey]bool, total int, cfg Config, rng *rand.Rand) ([]bool, int) {
	var best []bool
	bestGain := 0
	for round := 0; round < cfg.CandidatesPerRound; round++ {
		candidate := make([]bool, len(params))
		for i := range candidate {
			candidate[i] = rng.Intn(2) == 1
		}
		adjustChoices(candidate, groupMembers, rng)

		gain := estimateNewPairs(params, candidate, covered, cfg, rng)
		if gain > bestGain {
			bestGain = gain
			best = candidate
		}
	}
	return best, bestGain
}

// estimateNewPairs counts how many of candidate's realized pairs are not
// yet in covered. When the candidate's own pair count exceeds
// cfg.SampleThreshold, it estimates via a uniform sample and
// extrapolates instead of enumerating every pair.
func estimateNewPairs(params []parameter, candidate []bool, covered map[corpus.PairKey]bool, cfg Config, rng *rand.Rand) int {
	n := len(params)
	totalCandidatePairs := n * (n - 1) / 2
	if totalCandidatePairs <= cfg.SampleThreshold {
		newCount := 0
		forEachPair(params, candidate, func(key corpus.PairKey, valid bool) {
			if valid && !covered[key] {
				newCount++
			}
		})
		return newCount
	}

	sampled, newInSample := 0, 0
	for sampled < cfg.SampleSize {
		i := rng.Intn(n)
		j := rng.Intn(n)
		if i == j {
			continue
		}
		key, valid := pairKeyOf(params, candidate, i, j)
		if !valid {
			continue
		}
		sampled++
		if !covered[key] {
			newInSample++
		}
	}
	if sampled == 0 {
		return 0
	}
	ratio := float64(newInSample) / float64(sampled)
	return int(ratio * float64(totalCandidatePairs))
}

// forEachPair enumerates every unordered parameter pair realized by
// candidate, skipping the structurally-excluded (True,True) combination
// for choice siblings.
func forEachPair(params []parameter, candidate []bool, fn func(key corpus.PairKey, valid bool)) {
	n := len(params)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			key, valid := pairKeyOf(params, candidate, i, j)
			fn(key, valid)
		}
	}
}

func pairKeyOf(params []parameter, candidate []bool, i, j int) (corpus.PairKey, bool) {
	if sameGroup(params, i, j) && candidate[i] && candidate[j] {
		return corpus.PairKey{}, false
	}
	a, b := i, j
	if params[a].path > params[b].path {
		a, b = b, a
	}
	return corpus.PairKey{
		PathA: params[a].path,
		PathB: params[b].path,
		ValA:  candidate[a],
		ValB:  candidate[b],
	}, true
}

// addPattern materializes a corpus.TestPattern from assignment, folding
// its realized pairs into the global covered set without retaining a
// per-pattern copy, keeping only a compact Assignments map on the
// returned pattern.
func addPattern(id string, params []parameter, assignment []bool, covered map[corpus.PairKey]bool) *corpus.TestPattern {
	pat := corpus.NewTestPattern(id)
	for i, p := range params {
		pat.Assignments[p.path] = assignment[i]
	}
	forEachPair(params, assignment, func(key corpus.PairKey, valid bool) {
		if valid {
			covered[key] = true
		}
	})
	return pat
}
