package plan

import "testing"

func TestMarkDone_ReadinessCascade(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	g.AddDependency(b, a)

	if a.Status() != StatusPending || b.Status() != StatusWaiting {
		t.Fatalf("initial statuses wrong: a=%s b=%s", a.Status(), b.Status())
	}

	g.MarkDone(a)

	if a.Status() != StatusDone {
		t.Errorf("expected DONE, got %s", a.Status())
	}
	if b.Status() != StatusPending {
		t.Errorf("dependent should be promoted to PENDING, got %s", b.Status())
	}
}

func TestMarkDone_SecondPrerequisiteHoldsBack(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	c := mustNode(t, g, "c", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	g.AddDependency(b, a)
	g.AddDependency(b, c)

	g.MarkDone(a)
	if b.Status() != StatusWaiting {
		t.Fatalf("b should stay WAITING while c is not done, got %s", b.Status())
	}

	g.MarkDone(c)
	if b.Status() != StatusPending {
		t.Errorf("b should become PENDING after all prerequisites, got %s", b.Status())
	}
}

func TestMarkDone_Idempotent(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	g.AddDependency(b, a)

	g.MarkDone(a)
	g.MarkDone(a)

	if a.Status() != StatusDone {
		t.Errorf("expected DONE, got %s", a.Status())
	}
	if b.Status() != StatusPending {
		t.Errorf("repeated MarkDone must not disturb dependents, got %s", b.Status())
	}
}

func TestMarkDone_DoesNotTouchNonWaiting(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	c := mustNode(t, g, "c", "u", nil, nil)
	g.AddDependency(c, a)
	g.AddDependency(c, b)

	g.MarkDone(a)
	g.MarkDone(b)
	if c.Status() != StatusPending {
		t.Fatalf("c should be PENDING, got %s", c.Status())
	}

	// c уже PENDING — повторный каскад от одного из prerequisites
	// не должен его трогать.
	g.MarkDone(a)
	if c.Status() != StatusPending {
		t.Errorf("PENDING dependent must be left untouched, got %s", c.Status())
	}

	g.MarkDone(c)
	g.MarkDone(b)
	if c.Status() != StatusDone {
		t.Errorf("DONE is terminal, got %s", c.Status())
	}
}

func TestGraphDone(t *testing.T) {
	g := NewGraph()
	a := mustNode(t, g, "a", "u", nil, nil)
	b := mustNode(t, g, "b", "u", nil, nil)
	g.AddDependency(b, a)

	if g.Done() {
		t.Error("graph with unfinished nodes is not done")
	}
	g.MarkDone(a)
	g.MarkDone(b)
	if !g.Done() {
		t.Error("graph should be done after all nodes complete")
	}
}
