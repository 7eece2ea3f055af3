package units

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kadlec/mlproc/internal/arff"
)

const unitMajorityClassifier = "majority-classifier"

// majorityModel — сохранённая модель: имя целевого атрибута и
// мажоритарное значение из обучающей выборки.
type majorityModel struct {
	Class    string `json:"class"`
	Majority string `json:"majority"`
}

// majorityClassifier — базовый классификатор по мажоритарному классу.
//
// Режим задаётся параметром mode:
//   - train: вход — обучающая выборка, выход — файл модели;
//   - classify: входы — модель и данные, выход — данные с целевым
//     атрибутом, заменённым на предсказание.
//
// Параметр class (имя целевого атрибута) обязателен при обучении.
type majorityClassifier struct {
	spec  Spec
	train bool
	class string
}

func newMajorityClassifier(spec Spec) (Unit, error) {
	mode, err := spec.Param("mode")
	if err != nil {
		return nil, err
	}

	switch mode {
	case "train":
		if err := requireArity(spec, 1, 1); err != nil {
			return nil, err
		}
		class, err := spec.Param("class")
		if err != nil {
			return nil, err
		}
		return &majorityClassifier{spec: spec, train: true, class: class}, nil

	case "classify":
		if err := requireArity(spec, 2, 1); err != nil {
			return nil, err
		}
		return &majorityClassifier{spec: spec}, nil

	default:
		return nil, fmt.Errorf("%w: %s: mode must be train or classify, got %q",
			ErrBadParam, spec.ID, mode)
	}
}

func (u *majorityClassifier) Name() string { return unitMajorityClassifier }

func (u *majorityClassifier) Perform(ctx context.Context) error {
	if u.train {
		return u.performTrain()
	}
	return u.performClassify(ctx)
}

func (u *majorityClassifier) performTrain() error {
	rel, err := arff.ReadFile(u.spec.InputPaths()[0])
	if err != nil {
		return fmt.Errorf("%s: %w", unitMajorityClassifier, err)
	}
	idx := rel.AttrIndex(u.class)
	if idx < 0 {
		return fmt.Errorf("%s: %w: unknown class attribute %q",
			unitMajorityClassifier, ErrBadParam, u.class)
	}

	counts := make(map[string]int)
	for _, row := range rel.Rows {
		counts[row[idx]]++
	}
	best, bestCount := "", -1
	for v, c := range counts {
		// При равенстве берём лексикографически меньшее значение,
		// чтобы результат был детерминирован.
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	if bestCount < 0 {
		return fmt.Errorf("%s: %w: empty training data",
			unitMajorityClassifier, ErrBadParam)
	}

	model := majorityModel{Class: u.class, Majority: best}
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", unitMajorityClassifier, err)
	}
	return os.WriteFile(u.spec.OutputPaths()[0], data, 0o644)
}

func (u *majorityClassifier) performClassify(ctx context.Context) error {
	paths := u.spec.InputPaths()

	raw, err := os.ReadFile(paths[0])
	if err != nil {
		return fmt.Errorf("%s: %w", unitMajorityClassifier, err)
	}
	var model majorityModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return fmt.Errorf("%s: bad model file: %w", unitMajorityClassifier, err)
	}

	rel, err := arff.ReadFile(paths[1])
	if err != nil {
		return fmt.Errorf("%s: %w", unitMajorityClassifier, err)
	}
	idx := rel.AttrIndex(model.Class)
	if idx < 0 {
		return fmt.Errorf("%s: %w: data has no attribute %q",
			unitMajorityClassifier, ErrBadParam, model.Class)
	}

	for _, row := range rel.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		row[idx] = model.Majority
	}
	return rel.WriteFile(u.spec.OutputPaths()[0])
}
