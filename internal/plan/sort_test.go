package plan

import (
	"errors"
	"testing"
)

func TestSort_Chain(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	c := mustNode(t, g, "c", "u", nil, nil)
	g.AddDependency(b, a)
	g.AddDependency(c, b)

	if err := g.Sort(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Order() != 0 || b.Order() != 1 || c.Order() != 2 {
		t.Errorf("expected orders 0,1,2, got %d,%d,%d", a.Order(), b.Order(), c.Order())
	}
}

func TestSort_PrerequisiteOrderStrictlySmaller(t *testing.T) {
	// Ромб с дополнительным хвостом.
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	c := mustNode(t, g, "c", "u", nil, nil)
	d := mustNode(t, g, "d", "u", nil, nil)
	e := mustNode(t, g, "e", "u", nil, nil)
	g.AddDependency(b, a)
	g.AddDependency(c, a)
	g.AddDependency(d, b)
	g.AddDependency(d, c)
	g.AddDependency(e, d)

	if err := g.Sort(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, n := range g.Nodes() {
		for _, pid := range n.Prerequisites() {
			p, _ := g.Node(pid)
			if p.Order() >= n.Order() {
				t.Errorf("order(%s)=%d must be < order(%s)=%d",
					pid, p.Order(), n.ID(), n.Order())
			}
		}
	}

	// b и c взаимно независимы — общая стадия.
	if b.Order() != c.Order() {
		t.Errorf("independent nodes of one pass share a stage: b=%d c=%d", b.Order(), c.Order())
	}
}

func TestSort_CycleDetected(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	root := mustNode(t, g, "root", "u", nil, nil)
	g.AddDependency(b, a)
	g.AddDependency(a, b)
	g.AddDependency(a, root)

	err := g.Sort()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Remaining) != 2 {
		t.Errorf("expected 2 stuck nodes, got %v", cycleErr.Remaining)
	}

	// Узлы цикла не получают финального порядка; узел вне цикла — получает.
	if a.Order() != OrderUnset || b.Order() != OrderUnset {
		t.Errorf("cycle nodes must stay unordered: a=%d b=%d", a.Order(), b.Order())
	}
	if root.Order() != 0 {
		t.Errorf("root outside the cycle should be ordered, got %d", root.Order())
	}
}

func TestStages_GroupsByOrder(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	c := mustNode(t, g, "c", "u", nil, nil)
	g.AddDependency(c, a)
	g.AddDependency(c, b)

	if err := g.Sort(); err != nil {
		t.Fatal(err)
	}

	stages := g.Stages()
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if len(stages[0]) != 2 {
		t.Errorf("stage 0 should hold a and b, got %d nodes", len(stages[0]))
	}
	if len(stages[1]) != 1 || stages[1][0] != c {
		t.Errorf("stage 1 should hold only c")
	}
}
