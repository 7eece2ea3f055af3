package units

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kadlec/mlproc/internal/arff"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
	return path
}

const irisLike = `@relation demo
@attribute size numeric
@attribute color {red,green}
@attribute label {yes,no}
@data
1,red,yes
2,green,yes
3,red,no
4,green,yes
5,red,no
`

func TestRegistryDefault(t *testing.T) {
	r := DefaultRegistry()
	want := []string{
		"attribute-filter", "data-merger", "file-merger",
		"fold-split", "majority-classifier",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, ожидалось %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, ожидалось %q", i, got[i], want[i])
		}
	}
	if !r.Has("file-merger") {
		t.Error("Has(file-merger) = false")
	}
	if _, err := r.New("weka-classifier", Spec{}); !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("New(weka-classifier): err = %v, ожидался ErrUnitNotFound", err)
	}
}

func TestRegistryNewValidates(t *testing.T) {
	r := DefaultRegistry()

	// file-merger требует ровно один выход.
	_, err := r.New("file-merger", Spec{
		ID:      "m[1]",
		Inputs:  []string{"a", "b"},
		Outputs: []string{"x", "y"},
	})
	if !errors.Is(err, ErrArity) {
		t.Errorf("err = %v, ожидался ErrArity", err)
	}
}

func TestFileMerger(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha\n")
	writeFile(t, dir, "b.txt", "beta\n")

	u, err := DefaultRegistry().New("file-merger", Spec{
		ID:      "merge[1]",
		Inputs:  []string{"a.txt", "b.txt"},
		Outputs: []string{"out.txt"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := u.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "alpha\nbeta\n" {
		t.Errorf("результат = %q", got)
	}
}

func TestDataMerger(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p1.arff", irisLike)
	writeFile(t, dir, "p2.arff", irisLike)

	u, err := DefaultRegistry().New("data-merger", Spec{
		ID:      "dm[1]",
		Inputs:  []string{"p1.arff", "p2.arff"},
		Outputs: []string{"all.arff"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := u.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	rel, err := arff.ReadFile(filepath.Join(dir, "all.arff"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rel.Rows) != 10 {
		t.Errorf("строк %d, ожидалось 10", len(rel.Rows))
	}
}

func TestDataMergerHeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p1.arff", irisLike)
	writeFile(t, dir, "p2.arff", "@relation other\n@attribute x numeric\n@data\n1\n")

	u, err := DefaultRegistry().New("data-merger", Spec{
		ID:      "dm[1]",
		Inputs:  []string{"p1.arff", "p2.arff"},
		Outputs: []string{"all.arff"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := u.Perform(context.Background()); !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("err = %v, ожидался ErrHeaderMismatch", err)
	}
}

func TestAttributeFilterRemove(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "in.arff", irisLike)

	u, err := DefaultRegistry().New("attribute-filter", Spec{
		ID:      "f[1]",
		Params:  map[string]string{"remove": "color"},
		Inputs:  []string{"in.arff"},
		Outputs: []string{"out.arff"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := u.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	rel, err := arff.ReadFile(filepath.Join(dir, "out.arff"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rel.Attributes) != 2 {
		t.Fatalf("атрибутов %d, ожидалось 2", len(rel.Attributes))
	}
	if rel.AttrIndex("color") != -1 {
		t.Error("атрибут color не удалён")
	}
	if rel.Rows[0][1] != "yes" {
		t.Errorf("строка сдвинута неверно: %v", rel.Rows[0])
	}
}

func TestAttributeFilterKeep(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "in.arff", irisLike)

	u, err := DefaultRegistry().New("attribute-filter", Spec{
		ID:      "f[1]",
		Params:  map[string]string{"keep": "size, label"},
		Inputs:  []string{"in.arff"},
		Outputs: []string{"out.arff"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := u.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	rel, err := arff.ReadFile(filepath.Join(dir, "out.arff"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := len(rel.Attributes); got != 2 {
		t.Fatalf("атрибутов %d, ожидалось 2", got)
	}
	if rel.Attributes[0].Name != "size" || rel.Attributes[1].Name != "label" {
		t.Errorf("порядок атрибутов нарушен: %v", rel.Attributes)
	}
}

func TestAttributeFilterParamValidation(t *testing.T) {
	r := DefaultRegistry()

	// Оба параметра сразу — ошибка.
	_, err := r.New("attribute-filter", Spec{
		ID:      "f[1]",
		Params:  map[string]string{"remove": "a", "keep": "b"},
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
	})
	if !errors.Is(err, ErrBadParam) {
		t.Errorf("remove+keep: err = %v, ожидался ErrBadParam", err)
	}

	// Ни одного — тоже ошибка.
	_, err = r.New("attribute-filter", Spec{
		ID:      "f[1]",
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
	})
	if !errors.Is(err, ErrBadParam) {
		t.Errorf("без параметров: err = %v, ожидался ErrBadParam", err)
	}
}

func TestFoldSplit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "in.arff", irisLike)

	u, err := DefaultRegistry().New("fold-split", Spec{
		ID:      "s[1]",
		Inputs:  []string{"in.arff"},
		Outputs: []string{"f0.arff", "f1.arff"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := u.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	f0, err := arff.ReadFile(filepath.Join(dir, "f0.arff"))
	if err != nil {
		t.Fatalf("ReadFile(f0): %v", err)
	}
	f1, err := arff.ReadFile(filepath.Join(dir, "f1.arff"))
	if err != nil {
		t.Fatalf("ReadFile(f1): %v", err)
	}
	// 5 строк по кругу: 3 в первом фолде, 2 во втором.
	if len(f0.Rows) != 3 || len(f1.Rows) != 2 {
		t.Errorf("размеры фолдов %d/%d, ожидалось 3/2", len(f0.Rows), len(f1.Rows))
	}
	if f0.Rows[0][0] != "1" || f1.Rows[0][0] != "2" {
		t.Errorf("правило раскладки нарушено: %v / %v", f0.Rows[0], f1.Rows[0])
	}
}

func TestFoldSplitNeedsTwoOutputs(t *testing.T) {
	_, err := DefaultRegistry().New("fold-split", Spec{
		ID:      "s[1]",
		Inputs:  []string{"in.arff"},
		Outputs: []string{"only.arff"},
	})
	if !errors.Is(err, ErrArity) {
		t.Errorf("err = %v, ожидался ErrArity", err)
	}
}

func TestMajorityClassifierTrainClassify(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "train.arff", irisLike)
	writeFile(t, dir, "test.arff", irisLike)

	r := DefaultRegistry()

	train, err := r.New("majority-classifier", Spec{
		ID:      "c[1]",
		Params:  map[string]string{"mode": "train", "class": "label"},
		Inputs:  []string{"train.arff"},
		Outputs: []string{"model.json"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New(train): %v", err)
	}
	if err := train.Perform(context.Background()); err != nil {
		t.Fatalf("Perform(train): %v", err)
	}

	classify, err := r.New("majority-classifier", Spec{
		ID:      "c[1]#t",
		Params:  map[string]string{"mode": "classify"},
		Inputs:  []string{"model.json", "test.arff"},
		Outputs: []string{"pred.arff"},
		WorkDir: dir,
	})
	if err != nil {
		t.Fatalf("New(classify): %v", err)
	}
	if err := classify.Perform(context.Background()); err != nil {
		t.Fatalf("Perform(classify): %v", err)
	}

	rel, err := arff.ReadFile(filepath.Join(dir, "pred.arff"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Мажоритарный класс в выборке — yes (3 из 5).
	idx := rel.AttrIndex("label")
	for i, row := range rel.Rows {
		if row[idx] != "yes" {
			t.Errorf("строка %d: предсказание %q, ожидалось yes", i, row[idx])
		}
	}
}

func TestMajorityClassifierBadMode(t *testing.T) {
	_, err := DefaultRegistry().New("majority-classifier", Spec{
		ID:      "c[1]",
		Params:  map[string]string{"mode": "evaluate"},
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
	})
	if !errors.Is(err, ErrBadParam) {
		t.Errorf("err = %v, ожидался ErrBadParam", err)
	}
	_, err = DefaultRegistry().New("majority-classifier", Spec{
		ID:      "c[1]",
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
	})
	if !errors.Is(err, ErrMissingParam) {
		t.Errorf("без mode: err = %v, ожидался ErrMissingParam", err)
	}
}

func TestSpecPaths(t *testing.T) {
	s := Spec{
		WorkDir: "/work",
		Inputs:  []string{"rel.txt", "/abs/in.txt"},
		Outputs: []string{"out.txt"},
	}
	in := s.InputPaths()
	if in[0] != filepath.Join("/work", "rel.txt") {
		t.Errorf("InputPaths()[0] = %q", in[0])
	}
	if in[1] != "/abs/in.txt" {
		t.Errorf("InputPaths()[1] = %q", in[1])
	}
	if !strings.HasPrefix(s.OutputPaths()[0], "/work") {
		t.Errorf("OutputPaths()[0] = %q", s.OutputPaths()[0])
	}
}
