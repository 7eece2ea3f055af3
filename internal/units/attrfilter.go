package units

import (
	"context"
	"fmt"
	"strings"

	"github.com/kadlec/mlproc/internal/arff"
)

const unitAttributeFilter = "attribute-filter"

// attributeFilter удаляет или оставляет атрибуты по именам.
//
// Ровно один из параметров обязателен:
//   - remove — список атрибутов на удаление, через запятую;
//   - keep — список атрибутов, которые нужно оставить.
type attributeFilter struct {
	spec   Spec
	names  map[string]bool
	invert bool // true для keep: выбрасываем всё, чего нет в names
}

func newAttributeFilter(spec Spec) (Unit, error) {
	if err := requireArity(spec, 1, 1); err != nil {
		return nil, err
	}

	remove, hasRemove := spec.Params["remove"]
	keep, hasKeep := spec.Params["keep"]
	if hasRemove == hasKeep {
		return nil, fmt.Errorf("%w: %s: exactly one of remove/keep required",
			ErrBadParam, spec.ID)
	}

	raw := remove
	if hasKeep {
		raw = keep
	}
	names := make(map[string]bool)
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names[n] = true
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s: empty attribute list", ErrBadParam, spec.ID)
	}

	return &attributeFilter{spec: spec, names: names, invert: hasKeep}, nil
}

func (u *attributeFilter) Name() string { return unitAttributeFilter }

func (u *attributeFilter) Perform(ctx context.Context) error {
	rel, err := arff.ReadFile(u.spec.InputPaths()[0])
	if err != nil {
		return fmt.Errorf("%s: %w", unitAttributeFilter, err)
	}

	// Проверяем, что все перечисленные атрибуты существуют.
	for n := range u.names {
		if rel.AttrIndex(n) < 0 {
			return fmt.Errorf("%s: %w: unknown attribute %q",
				unitAttributeFilter, ErrBadParam, n)
		}
	}

	keepIdx := make([]int, 0, len(rel.Attributes))
	for i, a := range rel.Attributes {
		if u.names[a.Name] == u.invert {
			keepIdx = append(keepIdx, i)
		}
	}

	out := &arff.Relation{Name: rel.Name}
	for _, i := range keepIdx {
		out.Attributes = append(out.Attributes, rel.Attributes[i])
	}
	for _, row := range rel.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		filtered := make([]string, len(keepIdx))
		for j, i := range keepIdx {
			filtered[j] = row[i]
		}
		out.Rows = append(out.Rows, filtered)
	}
	return out.WriteFile(u.spec.OutputPaths()[0])
}
