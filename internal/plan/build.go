package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kadlec/mlproc/internal/domain"
)

// Build превращает сценарий в готовый к выполнению план.
//
// Фазы:
//
//  1. Валидация сценария.
//  2. Создание узла для каждого шага (шаблонного или конкретного).
//  3. Предварительное разрешение рёбер по конкретным артефактам.
//  4. Раскрытие шаблонов до неподвижной точки: шаблон раскрывается
//     по одному конкретному узлу на каждый артефакт, подходящий под
//     его wildcard-pattern; раскрытый шаблон отвязывается и удаляется.
//  5. Финальное переразрешение рёбер и нормализация статусов.
//  6. Топологическая сортировка.
//
// Build — однопоточная фаза планирования; полученный граф дальше
// мутируется только через MarkDone.
func Build(spec *domain.ScenarioSpec) (*Graph, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	g := NewGraph()
	for i := range spec.Steps {
		step := &spec.Steps[i]
		if _, err := g.NewNode(step.Name, step.Unit, step.Params, step.Inputs, step.Outputs); err != nil {
			return nil, err
		}
	}

	ResolveDependencies(g)

	if err := expandTemplates(g); err != nil {
		return nil, err
	}

	ResolveDependencies(g)
	g.normalizeStatuses()

	if err := g.Sort(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate проверяет сценарий перед построением плана.
func Validate(spec *domain.ScenarioSpec) error {
	if spec == nil || len(spec.Steps) == 0 {
		return ErrEmptySteps
	}

	for i := range spec.Steps {
		step := &spec.Steps[i]
		if step.Name == "" {
			return newValidationError("", "name",
				fmt.Sprintf("step #%d has empty name", i), ErrEmptyStepName)
		}
		if step.Unit == "" {
			return newValidationError(step.Name, "unit", "step has empty unit", ErrEmptyUnit)
		}
		for _, in := range step.Inputs {
			if err := validatePattern(step.Name, "inputs", in, true); err != nil {
				return err
			}
		}
		for _, out := range step.Outputs {
			if err := validatePattern(step.Name, "outputs", out, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// validatePattern проверяет wildcard-грамматику одного пути.
// Допустимо: без wildcard; ровно один "*"; ровно один "***"
// (только во входных путях). Всё остальное — ErrBadPattern.
func validatePattern(step, field, path string, allowTriple bool) error {
	stars := strings.Count(path, "*")
	switch {
	case stars == 0 || stars == 1:
		return nil
	case stars == 3 && strings.Contains(path, tokenTriple):
		if !allowTriple {
			return newValidationError(step, field,
				fmt.Sprintf("%q: \"***\" is only allowed in inputs", path), ErrBadPattern)
		}
		return nil
	default:
		return newValidationError(step, field,
			fmt.Sprintf("%q: at most one wildcard per path", path), ErrBadPattern)
	}
}

// expandTemplates раскрывает шаблонные узлы до неподвижной точки.
//
// В каждом проходе раскрываются шаблоны, для которых уже существует
// хотя бы один подходящий конкретный артефакт; артефакты для
// оставшихся шаблонов могут появиться после раскрытия соседних
// шаблонов в следующем проходе. Проход без прогресса при оставшихся
// шаблонах — ошибка сценария.
func expandTemplates(g *Graph) error {
	for {
		var templates []*Node
		for _, n := range g.Nodes() {
			if templateSlot(n) >= 0 {
				templates = append(templates, n)
			}
		}
		if len(templates) == 0 {
			return nil
		}

		progress := false
		for _, t := range templates {
			slot := templateSlot(t)
			token := tokenSingle
			if strings.Contains(t.Inputs[slot], tokenTriple) {
				token = tokenTriple
			}

			reps := replacements(g, t.Inputs[slot], token)
			if len(reps) == 0 {
				continue
			}

			for _, rep := range reps {
				var (
					clone *Node
					err   error
				)
				if token == tokenTriple {
					clone, err = g.ExpandAt(t, rep, slot)
				} else {
					clone, err = g.Expand(t, rep)
				}
				if err != nil {
					return err
				}
				// Политика планировщика: wildcard в выходах клона
				// закрывается тем же replacement, чтобы артефакты
				// раскрытых узлов были конкретны для следующих шагов.
				for i, out := range clone.Outputs {
					clone.Outputs[i] = substitute(out, tokenSingle, rep)
				}
			}

			g.Remove(t)
			progress = true
		}

		if !progress {
			ids := make([]string, len(templates))
			for i, t := range templates {
				ids[i] = t.ID()
			}
			return fmt.Errorf("%w: %s", ErrNoExpansionMatch, strings.Join(ids, ", "))
		}
	}
}

// templateSlot возвращает индекс первого входного слота с wildcard,
// или -1 для конкретного узла. Слоты с "***" имеют приоритет.
func templateSlot(n *Node) int {
	for i, in := range n.Inputs {
		if strings.Contains(in, tokenTriple) {
			return i
		}
	}
	for i, in := range n.Inputs {
		if strings.Count(in, "*") == 1 {
			return i
		}
	}
	return -1
}

// replacements собирает отсортированный набор подстановок для шаблона:
// по одной на каждый конкретный выходной артефакт другого узла,
// подходящий под pattern.
func replacements(g *Graph, pattern, token string) []string {
	seen := make(map[string]struct{})
	for _, n := range g.Nodes() {
		if templateSlot(n) >= 0 {
			continue // артефакты шаблонов ещё не конкретны
		}
		for _, out := range n.Outputs {
			if mid, ok := matchPattern(pattern, token, out); ok {
				seen[mid] = struct{}{}
			}
		}
	}
	reps := make([]string, 0, len(seen))
	for r := range seen {
		reps = append(reps, r)
	}
	sort.Strings(reps)
	return reps
}
