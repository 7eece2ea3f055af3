package plan

import "testing"

func TestResolveDependencies_ConcreteMatch(t *testing.T) {
	g := NewGraph()
	producer := mustNode(t, g, "extract", "u", []string{"raw.txt"}, []string{"feat.arff"})
	consumer := mustNode(t, g, "train", "u", []string{"feat.arff"}, []string{"model.bin"})

	ResolveDependencies(g)

	if !consumer.HasPrerequisite(producer.ID()) {
		t.Error("consumer must be linked to producer via feat.arff")
	}
	if !producer.HasDependent(consumer.ID()) {
		t.Error("edge must be registered on both endpoints")
	}
}

func TestResolveDependencies_WildcardPathsNeverMatch(t *testing.T) {
	// Текстуально одинаковые pattern-ы не порождают рёбер: шаблоны
	// связываются только после раскрытия, по конкретным путям.
	g := NewGraph()
	producer := mustNode(t, g, "train", "u", []string{"folds/*.arff"}, []string{"models/*.bin"})
	consumer := mustNode(t, g, "eval", "u", []string{"models/*.bin"}, []string{"stats/*.txt"})

	ResolveDependencies(g)

	if consumer.HasPrerequisite(producer.ID()) {
		t.Error("templates with equal pattern strings must stay unlinked")
	}
	if len(producer.Dependents()) != 0 || len(consumer.Prerequisites()) != 0 {
		t.Errorf("no edges expected, got dependents=%v prereqs=%v",
			producer.Dependents(), consumer.Prerequisites())
	}
}

func TestResolveDependencies_Idempotent(t *testing.T) {
	g := NewGraph()
	producer := mustNode(t, g, "a", "u", nil, []string{"x.arff"})
	consumer := mustNode(t, g, "b", "u", []string{"x.arff"}, nil)

	ResolveDependencies(g)
	ResolveDependencies(g)

	if len(consumer.Prerequisites()) != 1 {
		t.Errorf("expected exactly one prerequisite, got %v", consumer.Prerequisites())
	}
	if len(producer.Dependents()) != 1 {
		t.Errorf("expected exactly one dependent, got %v", producer.Dependents())
	}
}
