package arff

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `% комментарий
@relation weather

@attribute outlook {sunny,rain}
@attribute temperature numeric

@data
sunny, 85
rain, 70
`

func TestParse(t *testing.T) {
	rel, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rel.Name != "weather" {
		t.Errorf("Name = %q, ожидалось weather", rel.Name)
	}
	if len(rel.Attributes) != 2 {
		t.Fatalf("атрибутов %d, ожидалось 2", len(rel.Attributes))
	}
	if rel.Attributes[0].Name != "outlook" || rel.Attributes[0].Spec != "{sunny,rain}" {
		t.Errorf("неожиданный первый атрибут: %+v", rel.Attributes[0])
	}
	if len(rel.Rows) != 2 {
		t.Fatalf("строк %d, ожидалось 2", len(rel.Rows))
	}
	if rel.Rows[0][1] != "85" {
		t.Errorf("значение не обрезано по пробелам: %q", rel.Rows[0][1])
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"без data", "@relation r\n@attribute a numeric\n", ErrNoData},
		{"без relation", "@attribute a numeric\n@data\n1\n", ErrNoRelation},
		{"кривой атрибут", "@relation r\n@attribute onlyname\n@data\n", ErrBadAttribute},
		{"лишнее значение", "@relation r\n@attribute a numeric\n@data\n1,2\n", ErrRowWidth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.in)); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, ожидалось %v", err, tc.want)
			}
		})
	}
}

func TestAttrIndex(t *testing.T) {
	rel, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if i := rel.AttrIndex("temperature"); i != 1 {
		t.Errorf("AttrIndex(temperature) = %d, ожидалось 1", i)
	}
	if i := rel.AttrIndex("missing"); i != -1 {
		t.Errorf("AttrIndex(missing) = %d, ожидалось -1", i)
	}
}

func TestWriteRoundtrip(t *testing.T) {
	rel, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf bytes.Buffer
	if err := rel.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse после Write: %v", err)
	}
	if !back.SameHeader(rel) {
		t.Error("заголовок не сохранился после записи")
	}
	if len(back.Rows) != len(rel.Rows) {
		t.Errorf("строк %d, ожидалось %d", len(back.Rows), len(rel.Rows))
	}
}

func TestReadWriteFile(t *testing.T) {
	rel, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.arff")
	if err := rel.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if back.Name != rel.Name {
		t.Errorf("Name = %q, ожидалось %q", back.Name, rel.Name)
	}
}
