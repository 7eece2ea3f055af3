package units

import (
	"context"
	"errors"
	"fmt"

	"github.com/kadlec/mlproc/internal/arff"
)

const unitDataMerger = "data-merger"

// ErrHeaderMismatch — входные наборы данных имеют разные атрибуты.
var ErrHeaderMismatch = errors.New("input headers do not match")

// dataMerger объединяет строки нескольких ARFF-наборов с одинаковыми
// атрибутами в один набор. Имя отношения берётся из первого входа.
type dataMerger struct {
	spec Spec
}

func newDataMerger(spec Spec) (Unit, error) {
	if err := requireArity(spec, -1, 1); err != nil {
		return nil, err
	}
	return &dataMerger{spec: spec}, nil
}

func (u *dataMerger) Name() string { return unitDataMerger }

func (u *dataMerger) Perform(ctx context.Context) error {
	var merged *arff.Relation
	for _, path := range u.spec.InputPaths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := arff.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", unitDataMerger, err)
		}
		if merged == nil {
			merged = rel
			continue
		}
		if !merged.SameHeader(rel) {
			return fmt.Errorf("%s: %w: %s", unitDataMerger, ErrHeaderMismatch, path)
		}
		merged.Rows = append(merged.Rows, rel.Rows...)
	}
	return merged.WriteFile(u.spec.OutputPaths()[0])
}
