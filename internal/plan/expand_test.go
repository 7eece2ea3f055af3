package plan

import (
	"errors"
	"testing"
)

func TestExpand_SingleAsterisk(t *testing.T) {
	g := NewGraph()
	tmpl, err := g.NewNode("train", "majority-classifier",
		map[string]string{"target": "class"},
		[]string{"data/*.arff"},
		[]string{"model.bin"})
	if err != nil {
		t.Fatal(err)
	}

	clone, err := g.Expand(tmpl, "fold1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if clone.ID() != tmpl.ID()+"#fold1" {
		t.Errorf("expected id %s#fold1, got %s", tmpl.ID(), clone.ID())
	}
	if clone.Inputs[0] != "data/fold1.arff" {
		t.Errorf("expected data/fold1.arff, got %s", clone.Inputs[0])
	}
	// Шаблон не мутируется.
	if tmpl.Inputs[0] != "data/*.arff" {
		t.Errorf("template must stay untouched, got %s", tmpl.Inputs[0])
	}
}

func TestExpand_ZeroOrManyAsterisksPassThrough(t *testing.T) {
	g := NewGraph()
	tmpl, err := g.NewNode("merge", "data-merger", nil,
		[]string{"plain.arff", "two/*/star*.arff", "data/*.arff"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	clone, err := g.Expand(tmpl, "fold2")
	if err != nil {
		t.Fatal(err)
	}

	if clone.Inputs[0] != "plain.arff" {
		t.Errorf("path without wildcard must pass through, got %s", clone.Inputs[0])
	}
	if clone.Inputs[1] != "two/*/star*.arff" {
		t.Errorf("path with two wildcards must pass through, got %s", clone.Inputs[1])
	}
	if clone.Inputs[2] != "data/fold2.arff" {
		t.Errorf("single-wildcard path must be substituted, got %s", clone.Inputs[2])
	}
}

func TestExpand_DeepCopyIsolation(t *testing.T) {
	g := NewGraph()
	tmpl, err := g.NewNode("t", "u",
		map[string]string{"k": "v"},
		[]string{"in/*.arff"},
		[]string{"out.arff"})
	if err != nil {
		t.Fatal(err)
	}

	c1, err := g.Expand(tmpl, "a")
	if err != nil {
		t.Fatal(err)
	}
	c2, err := g.Expand(tmpl, "b")
	if err != nil {
		t.Fatal(err)
	}

	c1.Params["k"] = "mutated"
	c1.Outputs[0] = "mutated"

	if tmpl.Params["k"] != "v" || c2.Params["k"] != "v" {
		t.Error("clones must not share params storage")
	}
	if tmpl.Outputs[0] != "out.arff" || c2.Outputs[0] != "out.arff" {
		t.Error("clones must not share artifact-list storage")
	}
}

func TestExpand_ClonesEdgesSymmetrically(t *testing.T) {
	g := NewGraph()
	prep := mustNode(t, g, "prep", "u", nil, nil)
	tmpl := mustNode(t, g, "train", "u", []string{"data/*.arff"}, nil)
	g.AddDependency(tmpl, prep)

	clone, err := g.Expand(tmpl, "fold1")
	if err != nil {
		t.Fatal(err)
	}

	if !clone.HasPrerequisite(prep.ID()) {
		t.Error("clone should inherit template prerequisites")
	}
	if !prep.HasDependent(clone.ID()) {
		t.Error("inherited edge must be registered on the neighbour too")
	}
}

func TestExpandAt_SelectedSlotOnly(t *testing.T) {
	g := NewGraph()
	tmpl, err := g.NewNode("eval", "data-merger", nil,
		[]string{"models/***.bin", "test/***.arff"},
		[]string{"stats.txt"})
	if err != nil {
		t.Fatal(err)
	}

	clone, err := g.ExpandAt(tmpl, "fold1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if clone.Inputs[0] != "models/***.bin" {
		t.Errorf("other slots must be untouched even with the token, got %s", clone.Inputs[0])
	}
	if clone.Inputs[1] != "test/fold1.arff" {
		t.Errorf("selected slot must be substituted, got %s", clone.Inputs[1])
	}
	if clone.ID() != tmpl.ID()+"#fold1" {
		t.Errorf("unexpected clone id %s", clone.ID())
	}
}

func TestExpandAt_IndexOutOfRange(t *testing.T) {
	g := NewGraph()
	tmpl := mustNode(t, g, "eval", "u", []string{"a.arff"}, nil)

	if _, err := g.ExpandAt(tmpl, "x", 1); !errors.Is(err, ErrInputIndex) {
		t.Errorf("expected ErrInputIndex, got %v", err)
	}
	if _, err := g.ExpandAt(tmpl, "x", -1); !errors.Is(err, ErrInputIndex) {
		t.Errorf("expected ErrInputIndex for negative index, got %v", err)
	}
}

func TestExpandAt_NoTokenPassThrough(t *testing.T) {
	g := NewGraph()
	tmpl := mustNode(t, g, "eval", "u", []string{"plain.arff"}, nil)

	clone, err := g.ExpandAt(tmpl, "x", 0)
	if err != nil {
		t.Fatal(err)
	}
	if clone.Inputs[0] != "plain.arff" {
		t.Errorf("slot without token must pass through, got %s", clone.Inputs[0])
	}
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern   string
		token     string
		candidate string
		want      string
		ok        bool
	}{
		{"data/*.arff", "*", "data/fold1.arff", "fold1", true},
		{"data/*.arff", "*", "data/.arff", "", false},
		{"data/*.arff", "*", "other/fold1.arff", "", false},
		{"data/*.arff", "*", "data/fold1.txt", "", false},
		{"*", "*", "anything", "anything", true},
		{"no-wildcard", "*", "no-wildcard", "", false},
		{"a*b*c", "*", "aXbYc", "", false},
		{"models/***.bin", "***", "models/fold2.bin", "fold2", true},
		{"data/*.arff", "*", "data/*.arff", "", false}, // wildcard-кандидат
	}

	for _, tc := range cases {
		got, ok := matchPattern(tc.pattern, tc.token, tc.candidate)
		if ok != tc.ok || got != tc.want {
			t.Errorf("matchPattern(%q, %q, %q) = (%q, %v), want (%q, %v)",
				tc.pattern, tc.token, tc.candidate, got, ok, tc.want, tc.ok)
		}
	}
}
