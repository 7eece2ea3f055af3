package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/kadlec/mlproc/internal/domain"
)

func TestBuild_EndToEndScenario(t *testing.T) {
	spec := &domain.ScenarioSpec{
		Name: "baseline",
		Steps: []domain.StepDef{
			{Name: "extract", Unit: "file-merger", Inputs: []string{"raw.txt"}, Outputs: []string{"feat.arff"}},
			{Name: "train", Unit: "majority-classifier", Inputs: []string{"feat.arff"}, Outputs: []string{"model.bin"}},
		},
	}

	g, err := Build(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	extract, ok := g.Node("extract[1]")
	if !ok {
		t.Fatal("extract node missing")
	}
	train, ok := g.Node("train[2]")
	if !ok {
		t.Fatal("train node missing")
	}

	if extract.Status() != StatusPending {
		t.Errorf("extract should start PENDING, got %s", extract.Status())
	}
	if train.Status() != StatusWaiting {
		t.Errorf("train should start WAITING, got %s", train.Status())
	}
	if !train.HasPrerequisite(extract.ID()) {
		t.Error("train must depend on extract via feat.arff")
	}
	if !(extract.Order() < train.Order()) {
		t.Errorf("order(extract)=%d must be < order(train)=%d", extract.Order(), train.Order())
	}

	g.MarkDone(extract)
	if train.Status() != StatusPending {
		t.Errorf("train should be unblocked, got %s", train.Status())
	}
}

func TestBuild_WildcardFanOut(t *testing.T) {
	// split объявляет три фолда; train — шаблон, раскрывающийся
	// в один узел на фолд; merge собирает статистику всех фолдов.
	spec := &domain.ScenarioSpec{
		Steps: []domain.StepDef{
			{
				Name: "split", Unit: "fold-split",
				Inputs:  []string{"all.arff"},
				Outputs: []string{"folds/fold0.arff", "folds/fold1.arff", "folds/fold2.arff"},
			},
			{
				Name: "train", Unit: "majority-classifier",
				Inputs:  []string{"folds/*.arff"},
				Outputs: []string{"models/*.bin"},
			},
		},
	}

	g, err := Build(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Шаблон удалён, вместо него три конкретных узла.
	if g.Len() != 4 {
		t.Fatalf("expected 4 nodes (split + 3 folds), got %d", g.Len())
	}
	if _, ok := g.Node("train[2]"); ok {
		t.Error("template node must be pruned after expansion")
	}

	split, _ := g.Node("split[1]")
	for _, suffix := range []string{"fold0", "fold1", "fold2"} {
		id := "train[2]#" + suffix
		n, ok := g.Node(id)
		if !ok {
			t.Fatalf("expanded node %s missing", id)
		}
		if n.Inputs[0] != "folds/"+suffix+".arff" {
			t.Errorf("%s: unexpected input %s", id, n.Inputs[0])
		}
		if n.Outputs[0] != "models/"+suffix+".bin" {
			t.Errorf("%s: unexpected output %s", id, n.Outputs[0])
		}
		if !n.HasPrerequisite(split.ID()) {
			t.Errorf("%s must depend on split", id)
		}
		if n.Status() != StatusWaiting {
			t.Errorf("%s should be WAITING, got %s", id, n.Status())
		}
		if !(split.Order() < n.Order()) {
			t.Errorf("%s must be ordered after split", id)
		}
	}
}

func TestBuild_ChainedTemplates(t *testing.T) {
	// Раскрытие eval возможно только после раскрытия train:
	// конкретные артефакты моделей появляются на втором проходе.
	spec := &domain.ScenarioSpec{
		Steps: []domain.StepDef{
			{
				Name: "split", Unit: "fold-split",
				Inputs:  []string{"all.arff"},
				Outputs: []string{"folds/fold0.arff", "folds/fold1.arff"},
			},
			{
				Name: "train", Unit: "majority-classifier",
				Inputs:  []string{"folds/*.arff"},
				Outputs: []string{"models/*.bin"},
			},
			{
				Name: "eval", Unit: "majority-classifier",
				Inputs:  []string{"models/*.bin"},
				Outputs: []string{"stats/*.txt"},
			},
		},
	}

	g, err := Build(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Len() != 5 {
		t.Fatalf("expected 5 nodes, got %d", g.Len())
	}

	eval0, ok := g.Node("eval[3]#fold0")
	if !ok {
		t.Fatal("eval[3]#fold0 missing")
	}
	train0, _ := g.Node("train[2]#fold0")
	if !eval0.HasPrerequisite(train0.ID()) {
		t.Error("per-fold eval must depend on per-fold train")
	}
	// Фолды независимы: eval fold0 не зависит от train fold1.
	if eval0.HasPrerequisite("train[2]#fold1") {
		t.Error("folds must stay independent")
	}
}

func TestBuild_SharedPatternStaysUnlinked(t *testing.T) {
	// Два независимых конвейера, чьи шаблоны текстуально делят один
	// pattern ("models/*.bin"). Рёбра должны выводиться только по
	// конкретным путям после раскрытия, без перекрёстных зависимостей
	// между конвейерами.
	spec := &domain.ScenarioSpec{
		Steps: []domain.StepDef{
			{Name: "prepA", Unit: "file-merger", Inputs: []string{"raw-a.txt"}, Outputs: []string{"fa/one.arff"}},
			{Name: "prepB", Unit: "file-merger", Inputs: []string{"raw-b.txt"}, Outputs: []string{"fb/two.arff"}},
			{Name: "trainA", Unit: "majority-classifier", Inputs: []string{"fa/*.arff"}, Outputs: []string{"models/*.bin"}},
			{Name: "trainB", Unit: "majority-classifier", Inputs: []string{"fb/*.arff"}, Outputs: []string{"models/*.bin"}},
			{Name: "eval", Unit: "majority-classifier", Inputs: []string{"models/*.bin"}, Outputs: []string{"stats/*.txt"}},
		},
	}

	g, err := Build(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Len() != 6 {
		t.Fatalf("expected 6 nodes, got %d", g.Len())
	}

	evalOne, ok := g.Node("eval[5]#one")
	if !ok {
		t.Fatal("eval[5]#one missing")
	}
	evalTwo, ok := g.Node("eval[5]#two")
	if !ok {
		t.Fatal("eval[5]#two missing")
	}

	if !evalOne.HasPrerequisite("trainA[3]#one") {
		t.Error("eval#one must depend on trainA#one")
	}
	if evalOne.HasPrerequisite("trainB[4]#two") {
		t.Error("eval#one must not depend on trainB's pipeline")
	}
	if !evalTwo.HasPrerequisite("trainB[4]#two") {
		t.Error("eval#two must depend on trainB#two")
	}
	if evalTwo.HasPrerequisite("trainA[3]#one") {
		t.Error("eval#two must not depend on trainA's pipeline")
	}
}

func TestBuild_TripleAsteriskCartesian(t *testing.T) {
	spec := &domain.ScenarioSpec{
		Steps: []domain.StepDef{
			{
				Name: "models", Unit: "fold-split",
				Inputs:  []string{"all.arff"},
				Outputs: []string{"models/m1.bin", "models/m2.bin"},
			},
			{
				Name: "tests", Unit: "fold-split",
				Inputs:  []string{"all.arff"},
				Outputs: []string{"test/t1.arff"},
			},
			{
				Name: "score", Unit: "data-merger",
				Inputs:  []string{"models/***.bin", "test/***.arff"},
				Outputs: []string{"scores.txt"},
			},
		},
	}

	g, err := Build(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 модели × 1 тест = 2 конкретных score-узла.
	var scores []*Node
	for _, n := range g.Nodes() {
		if strings.HasPrefix(n.ID(), "score[3]#") {
			scores = append(scores, n)
		}
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 concrete score nodes, got %d", len(scores))
	}
	for _, n := range scores {
		if strings.Contains(n.Inputs[0], "*") || strings.Contains(n.Inputs[1], "*") {
			t.Errorf("%s: inputs must be fully concrete: %v", n.ID(), n.Inputs)
		}
	}
}

func TestBuild_NoExpansionMatch(t *testing.T) {
	spec := &domain.ScenarioSpec{
		Steps: []domain.StepDef{
			{Name: "lonely", Unit: "data-merger", Inputs: []string{"nowhere/*.arff"}, Outputs: []string{"out.arff"}},
		},
	}

	_, err := Build(spec)
	if !errors.Is(err, ErrNoExpansionMatch) {
		t.Errorf("expected ErrNoExpansionMatch, got %v", err)
	}
}

func TestBuild_CyclicScenario(t *testing.T) {
	spec := &domain.ScenarioSpec{
		Steps: []domain.StepDef{
			{Name: "a", Unit: "u", Inputs: []string{"from-b.arff"}, Outputs: []string{"from-a.arff"}},
			{Name: "b", Unit: "u", Inputs: []string{"from-a.arff"}, Outputs: []string{"from-b.arff"}},
		},
	}

	_, err := Build(spec)
	if !errors.Is(err, ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		spec *domain.ScenarioSpec
		want error
	}{
		{"nil spec", nil, ErrEmptySteps},
		{"no steps", &domain.ScenarioSpec{}, ErrEmptySteps},
		{
			"empty name",
			&domain.ScenarioSpec{Steps: []domain.StepDef{{Unit: "u"}}},
			ErrEmptyStepName,
		},
		{
			"empty unit",
			&domain.ScenarioSpec{Steps: []domain.StepDef{{Name: "a"}}},
			ErrEmptyUnit,
		},
		{
			"two wildcards in one path",
			&domain.ScenarioSpec{Steps: []domain.StepDef{
				{Name: "a", Unit: "u", Inputs: []string{"x/*/y/*.arff"}},
			}},
			ErrBadPattern,
		},
		{
			"triple in outputs",
			&domain.ScenarioSpec{Steps: []domain.StepDef{
				{Name: "a", Unit: "u", Outputs: []string{"out/***.arff"}},
			}},
			ErrBadPattern,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.spec); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
