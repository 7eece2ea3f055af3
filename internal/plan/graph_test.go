package plan

import (
	"errors"
	"testing"
)

func mustNode(t *testing.T, g *Graph, prefix, unit string, inputs, outputs []string) *Node {
	t.Helper()
	n, err := g.NewNode(prefix, unit, nil, inputs, outputs)
	if err != nil {
		t.Fatalf("NewNode(%s): %v", prefix, err)
	}
	return n
}

func TestNewNode_GeneratedIDs(t *testing.T) {
	g := NewGraph()

	a := mustNode(t, g, "extract", "file-merger", nil, nil)
	b := mustNode(t, g, "train", "majority-classifier", nil, nil)

	if a.ID() != "extract[1]" {
		t.Errorf("expected extract[1], got %s", a.ID())
	}
	if b.ID() != "train[2]" {
		t.Errorf("expected train[2], got %s", b.ID())
	}

	// Счётчик принадлежит графу: независимый граф начинает с 1.
	g2 := NewGraph()
	c := mustNode(t, g2, "extract", "file-merger", nil, nil)
	if c.ID() != "extract[1]" {
		t.Errorf("independent graph should restart counter, got %s", c.ID())
	}
}

func TestNewNode_InitialStatus(t *testing.T) {
	g := NewGraph()
	n := mustNode(t, g, "a", "u", nil, nil)

	if n.Status() != StatusPending {
		t.Errorf("node without prerequisites should start PENDING, got %s", n.Status())
	}
	if n.Order() != OrderUnset {
		t.Errorf("order should be unset before sorting, got %d", n.Order())
	}
}

func TestNewNode_CopiesArguments(t *testing.T) {
	g := NewGraph()
	params := map[string]string{"k": "v"}
	inputs := []string{"in.arff"}

	n := mustNode(t, g, "a", "u", nil, nil)
	_ = n

	m, err := g.NewNode("b", "u", params, inputs, nil)
	if err != nil {
		t.Fatal(err)
	}

	params["k"] = "changed"
	inputs[0] = "changed"

	if m.Params["k"] != "v" {
		t.Error("params should be copied on node creation")
	}
	if m.Inputs[0] != "in.arff" {
		t.Error("inputs should be copied on node creation")
	}
}

func TestAddDependency_Idempotent(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)

	g.AddDependency(b, a)
	g.AddDependency(b, a)

	if got := len(b.Prerequisites()); got != 1 {
		t.Errorf("expected exactly 1 prerequisite, got %d", got)
	}
	if got := len(a.Dependents()); got != 1 {
		t.Errorf("expected exactly 1 dependent, got %d", got)
	}
	if !b.HasPrerequisite(a.ID()) || !a.HasDependent(b.ID()) {
		t.Error("edge must be present on both endpoints")
	}
}

func TestAddDependency_ForcesWaiting(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	c := mustNode(t, g, "c", "u", nil, nil)

	g.AddDependency(b, a)
	if b.Status() != StatusWaiting {
		t.Errorf("dependent should become WAITING, got %s", b.Status())
	}

	// Выполненный prerequisite не спасает от новой зависимости:
	// любое новое ребро безусловно отзывает готовность.
	g.MarkDone(a)
	if b.Status() != StatusPending {
		t.Fatalf("expected PENDING after MarkDone, got %s", b.Status())
	}
	g.AddDependency(b, c)
	if b.Status() != StatusWaiting {
		t.Errorf("new unmet dependency should revoke readiness, got %s", b.Status())
	}
}

func TestLooseDependencies_PrefixPruning(t *testing.T) {
	g := NewGraph()
	tmpl := mustNode(t, g, "train", "u", nil, nil)
	prep := mustNode(t, g, "prep", "u", nil, nil)
	eval := mustNode(t, g, "eval", "u", nil, nil)

	g.AddDependency(tmpl, prep) // prep → train
	g.AddDependency(eval, tmpl) // train → eval

	g.LooseDependencies(tmpl, "prep")

	if tmpl.HasPrerequisite(prep.ID()) {
		t.Error("prefix-matched prerequisite should be removed")
	}
	if prep.HasDependent(tmpl.ID()) {
		t.Error("edge must be removed from the other endpoint too")
	}
	// Рёбра к узлам с другим префиксом не трогаются.
	if !tmpl.HasDependent(eval.ID()) || !eval.HasPrerequisite(tmpl.ID()) {
		t.Error("non-matching edges must survive")
	}
}

func TestLooseDependencies_EmptyPrefixDetachesAll(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	c := mustNode(t, g, "c", "u", nil, nil)

	g.AddDependency(b, a)
	g.AddDependency(c, b)

	g.LooseDependencies(b, "")

	if len(b.Prerequisites()) != 0 || len(b.Dependents()) != 0 {
		t.Error("empty prefix should detach the node completely")
	}
	if a.HasDependent(b.ID()) || c.HasPrerequisite(b.ID()) {
		t.Error("neighbours must not reference the detached node")
	}
}

func TestRemove_DeletesFromArena(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	g.AddDependency(b, a)

	g.Remove(a)

	if _, ok := g.Node(a.ID()); ok {
		t.Error("removed node should not be resolvable")
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 node left, got %d", g.Len())
	}
	if b.HasPrerequisite(a.ID()) {
		t.Error("removal must detach edges on both sides")
	}
}

func TestPending_ReturnsRunnableSet(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	g.AddDependency(b, a)

	pending := g.Pending()
	if len(pending) != 1 || pending[0] != a {
		t.Fatalf("expected only %s pending, got %d nodes", a.ID(), len(pending))
	}

	g.MarkDone(a)
	pending = g.Pending()
	if len(pending) != 1 || pending[0] != b {
		t.Fatalf("expected only %s pending after completion, got %d nodes", b.ID(), len(pending))
	}
}

func TestExpand_DuplicateCloneID(t *testing.T) {
	g := NewGraph()
	tmpl := mustNode(t, g, "train", "u", []string{"data/*.arff"}, nil)

	if _, err := g.Expand(tmpl, "fold1"); err != nil {
		t.Fatalf("first expansion: %v", err)
	}
	_, err := g.Expand(tmpl, "fold1")
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}
