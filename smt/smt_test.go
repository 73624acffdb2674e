package smt

import (
	"context"
	"testing"

	"github.com/agentflare-ai/xsdcov/pathenum"
)

func buildUniverse() *pathenum.Result {
	return &pathenum.Result{
		DefinedElementPaths: map[pathenum.Path]bool{
			"/Order":      true,
			"/Order/ID":   true,
			"/Order/Note": true,
			"/Order/Card": true,
			"/Order/Cash": true,
		},
		DefinedAttributePaths: map[pathenum.Path]bool{
			"/Order@version": true,
		},
		Items: map[pathenum.Path]pathenum.OptionalItem{
			"/Order/Note": {Path: "/Order/Note", Kind: pathenum.ElementKind},
			"/Order/Card": {Path: "/Order/Card", Kind: pathenum.ElementKind, ChoiceGroupID: "choice-1"},
			"/Order/Cash": {Path: "/Order/Cash", Kind: pathenum.ElementKind, ChoiceGroupID: "choice-1"},
		},
		ChoiceGroups: map[string][]pathenum.Path{
			"choice-1": {"/Order/Card", "/Order/Cash"},
		},
	}
}

func TestEncodeBuildsHierarchyAndRequired(t *testing.T) {
	enc := Encode(buildUniverse())

	if len(enc.Vars) != 6 {
		t.Fatalf("got %d vars, want 6", len(enc.Vars))
	}
	if len(enc.Choice) != 1 || len(enc.Choice[0].Members) != 2 {
		t.Fatalf("Choice = %+v, want one group with two members", enc.Choice)
	}

	// /Order/ID is a defined, non-optional child of /Order: required.
	idx := enc.index
	foundRequired := false
	for _, pair := range enc.Required {
		if pair[1] == idx["/Order/ID"] {
			foundRequired = true
		}
	}
	if !foundRequired {
		t.Error("expected /Order/ID to appear as a Required child of /Order")
	}

	// /Order/Note is an optional item: must not be in Required.
	for _, pair := range enc.Required {
		if pair[1] == idx["/Order/Note"] {
			t.Error("/Order/Note is optional and must not appear in Required")
		}
	}
}

func TestSolveFalsifiesAllButOneChoiceMember(t *testing.T) {
	enc := Encode(buildUniverse())
	model, err := Solve(context.Background(), enc, Config{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	cardTrue := model.Assignment["/Order/Card"]
	cashTrue := model.Assignment["/Order/Cash"]
	if cardTrue == cashTrue {
		t.Fatalf("expected exactly one of Card/Cash true, got Card=%v Cash=%v", cardTrue, cashTrue)
	}
	if !model.Assignment["/Order/ID"] {
		t.Error("required path /Order/ID should remain true")
	}
}

func TestSolveHonorsCancelledContext(t *testing.T) {
	enc := Encode(buildUniverse())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, enc, Config{})
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
	if _, ok := err.(*TimeoutError); !ok {
		t.Errorf("got error of type %T, want *TimeoutError", err)
	}
}

func TestErrorTypesImplementError(t *testing.T) {
	var _ error = &TimeoutError{DeadlineMS: 100}
	var _ error = &UnsatisfiableError{Reason: "test"}
}
