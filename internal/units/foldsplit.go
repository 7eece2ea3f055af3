package units

import (
	"context"
	"fmt"

	"github.com/kadlec/mlproc/internal/arff"
)

const unitFoldSplit = "fold-split"

// foldSplit разбивает набор данных на K фолдов, где K — число
// выходов. Строки распределяются по кругу: i-я строка попадает в
// фолд i mod K, так что фолды отличаются по размеру не более чем
// на одну строку. Детерминирован: перемешивание не выполняется.
type foldSplit struct {
	spec Spec
}

func newFoldSplit(spec Spec) (Unit, error) {
	if err := requireArity(spec, 1, -1); err != nil {
		return nil, err
	}
	if len(spec.Outputs) < 2 {
		return nil, fmt.Errorf("%w: %s: need at least 2 outputs, got %d",
			ErrArity, spec.ID, len(spec.Outputs))
	}
	return &foldSplit{spec: spec}, nil
}

func (u *foldSplit) Name() string { return unitFoldSplit }

func (u *foldSplit) Perform(ctx context.Context) error {
	rel, err := arff.ReadFile(u.spec.InputPaths()[0])
	if err != nil {
		return fmt.Errorf("%s: %w", unitFoldSplit, err)
	}

	outs := u.spec.OutputPaths()
	k := len(outs)
	folds := make([]*arff.Relation, k)
	for i := range folds {
		folds[i] = &arff.Relation{
			Name:       fmt.Sprintf("%s_fold%d", rel.Name, i),
			Attributes: rel.Attributes,
		}
	}
	for i, row := range rel.Rows {
		folds[i%k].Rows = append(folds[i%k].Rows, row)
	}

	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fold.WriteFile(outs[i]); err != nil {
			return fmt.Errorf("%s: %w", unitFoldSplit, err)
		}
	}
	return nil
}
