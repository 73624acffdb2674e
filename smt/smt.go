// Package smt is a sketch of a constraint-based generation strategy: a
// direct Boolean-constraint encoding of the path universe plus a small
// deterministic maximizer. It is intentionally a single-model sketch,
// not a production solver; multi-file optimal covering is a future
// extension, and nothing in the generator pipeline depends on this
// package today.
package smt

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentflare-ai/xsdcov/pathenum"
)

// Config bounds a Solve call.
type Config struct {
	// DeadlineMS is the millisecond-granularity search budget; Solve also
	// honors ctx's own deadline if one is set, whichever is sooner.
	DeadlineMS int
}

// Encoding is the Boolean-constraint encoding of a path universe: one
// variable per path, plus hierarchy, required-child, and choice clauses.
type Encoding struct {
	Vars  []pathenum.Path
	index map[pathenum.Path]int

	// Hierarchy holds (child, parent) index pairs: x_child ⇒ x_parent.
	Hierarchy [][2]int
	// Required holds (parent, child) index pairs: x_parent ⇒ x_child.
	Required [][2]int
	// Choice holds, per group, the parent index and the member indices:
	// x_parent ⇒ (x_m1 ∨ … ∨ x_mk), and pairwise ¬(x_mi ∧ x_mj).
	Choice []ChoiceConstraint
}

// ChoiceConstraint is one choice group's clause.
type ChoiceConstraint struct {
	Parent  int
	Members []int
}

// TimeoutError reports that Solve's deadline elapsed before it finished.
type TimeoutError struct {
	DeadlineMS int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("smt: solve exceeded %dms deadline", e.DeadlineMS)
}

// UnsatisfiableError reports that no assignment satisfies the encoding's
// constraints. The monotone relaxation Solve performs (everything starts
// true, falses only cascade to descendants and to parents that require
// the falsified child) means this encoding is always
// satisfiable by the all-false assignment, so Solve never returns this
// in practice. It exists as a hook for a future, less permissive
// encoding.
type UnsatisfiableError struct {
	Reason string
}

func (e *UnsatisfiableError) Error() string { return "smt: unsatisfiable: " + e.Reason }

// Encode builds the constraint encoding for universe's full defined path
// set. Hierarchy is derived structurally from path syntax; "required"
// status is derived from membership: a defined child path not present in
// universe.Items is a required child (optional children and choice
// alternatives are the ones recorded there).
func Encode(universe *pathenum.Result) *Encoding {
	var vars []pathenum.Path
	for p := range universe.DefinedElementPaths {
		vars = append(vars, p)
	}
	for p := range universe.DefinedAttributePaths {
		vars = append(vars, p)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	enc := &Encoding{Vars: vars, index: make(map[pathenum.Path]int, len(vars))}
	for i, p := range vars {
		enc.index[p] = i
	}

	for _, p := range vars {
		parent, ok := parentOf(p)
		if !ok {
			continue
		}
		pi, ok := enc.index[parent]
		if !ok {
			continue
		}
		ci := enc.index[p]
		enc.Hierarchy = append(enc.Hierarchy, [2]int{ci, pi})

		if _, isOptional := universe.Items[p]; !isOptional {
			enc.Required = append(enc.Required, [2]int{pi, ci})
		}
	}

	for _, groupID := range universe.ChoiceGroupIDs() {
		members := universe.ChoiceGroups[groupID]
		if len(members) == 0 {
			continue
		}
		parent, ok := parentOf(members[0])
		if !ok {
			continue
		}
		pi, ok := enc.index[parent]
		if !ok {
			continue
		}
		memberIdx := make([]int, 0, len(members))
		for _, m := range members {
			if mi, ok := enc.index[m]; ok {
				memberIdx = append(memberIdx, mi)
			}
		}
		enc.Choice = append(enc.Choice, ChoiceConstraint{Parent: pi, Members: memberIdx})
	}

	return enc
}

// parentOf derives the structural parent of path p: an attribute's owner
// element for "@"-paths, or the element one level up for "/"-paths. The
// root element has no parent.
func parentOf(p pathenum.Path) (pathenum.Path, bool) {
	s := string(p)
	if at := strings.LastIndex(s, "@"); at >= 0 {
		return pathenum.Path(s[:at]), true
	}
	idx := strings.LastIndex(s, "/")
	if idx <= 0 {
		return "", false
	}
	return pathenum.Path(s[:idx]), true
}

// Model is one satisfying (and, for this sketch, maximal-by-construction)
// assignment: True for every variable the Candidate Builder should treat
// as present when materializing the single XML document this model
// describes.
type Model struct {
	Assignment map[pathenum.Path]bool
}

// Solve finds a single model maximizing Σx_p, honoring ctx's deadline (and
// cfg.DeadlineMS as an upper bound on it). The maximizer is a
// deterministic greedy relaxation, not a general solver: start with every
// variable true (trivially satisfies Hierarchy and Required; the only
// clauses that can force a false are the pairwise choice exclusions), then
// for each choice group keep its lowest-index member and falsify the rest,
// cascading each falsification to its descendants and to any parent whose
// required-child was just falsified, so the final assignment stays
// constraint-consistent. A real solver doing global backtracking search
// could pack choices more cleverly; this sketch does not attempt that.
func Solve(ctx context.Context, enc *Encoding, cfg Config) (*Model, error) {
	if cfg.DeadlineMS <= 0 {
		cfg.DeadlineMS = 1000
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DeadlineMS)*time.Millisecond)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, &TimeoutError{DeadlineMS: cfg.DeadlineMS}
	}

	assignment := make([]bool, len(enc.Vars))
	for i := range assignment {
		assignment[i] = true
	}

	childrenOfParent := make(map[int][]int) // hierarchy: parent -> children
	for _, pair := range enc.Hierarchy {
		child, parent := pair[0], pair[1]
		childrenOfParent[parent] = append(childrenOfParent[parent], child)
	}
	requiredParentsOfChild := make(map[int][]int)
	for _, pair := range enc.Required {
		parent, child := pair[0], pair[1]
		requiredParentsOfChild[child] = append(requiredParentsOfChild[child], parent)
	}

	var worklist []int
	falsify := func(i int) {
		if !assignment[i] {
			return
		}
		assignment[i] = false
		worklist = append(worklist, i)
	}

	sortedChoice := append([]ChoiceConstraint(nil), enc.Choice...)
	sort.Slice(sortedChoice, func(i, j int) bool { return sortedChoice[i].Parent < sortedChoice[j].Parent })

	for _, cc := range sortedChoice {
		if err := ctx.Err(); err != nil {
			return nil, &TimeoutError{DeadlineMS: cfg.DeadlineMS}
		}
		if len(cc.Members) == 0 {
			continue
		}
		members := append([]int(nil), cc.Members...)
		sort.Ints(members)
		for _, m := range members[1:] {
			falsify(m)
		}
	}

	for len(worklist) > 0 {
		v := worklist[0]
		worklist = worklist[1:]
		for _, child := range childrenOfParent[v] {
			falsify(child)
		}
		for _, parent := range requiredParentsOfChild[v] {
			falsify(parent)
		}
	}

	model := &Model{Assignment: make(map[pathenum.Path]bool, len(enc.Vars))}
	for i, p := range enc.Vars {
		model.Assignment[p] = assignment[i]
	}
	return model, nil
}
