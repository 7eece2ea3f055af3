// Package arff читает и пишет данные в минимальном подмножестве
// формата ARFF: @relation, @attribute и @data; строки данных —
// значения через запятую. Комментарии ("%") и пустые строки
// игнорируются, регистр директив не важен.
//
// Этого подмножества достаточно для вычислительных модулей mlproc
// (слияние данных, фильтрация атрибутов, простая классификация);
// полноценная поддержка sparse-формата и кавычек — вне задачи пакета.
package arff

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Ошибки разбора.
var (
	// ErrNoRelation — файл не начинается с @relation.
	ErrNoRelation = errors.New("arff: missing @relation header")

	// ErrNoData — в файле нет секции @data.
	ErrNoData = errors.New("arff: missing @data section")

	// ErrBadAttribute — некорректная строка @attribute.
	ErrBadAttribute = errors.New("arff: malformed @attribute")

	// ErrRowWidth — строка данных не совпадает по ширине с атрибутами.
	ErrRowWidth = errors.New("arff: row width does not match attributes")
)

// Attribute — объявление одного атрибута.
type Attribute struct {
	// Name — имя атрибута.
	Name string

	// Spec — тип как он записан в файле: "numeric", "string",
	// "{a,b,c}" и т.п. Пакет его не интерпретирует.
	Spec string
}

// Relation — разобранный ARFF-файл: заголовок и строки данных.
type Relation struct {
	Name       string
	Attributes []Attribute
	Rows       [][]string
}

// AttrIndex возвращает индекс атрибута по имени, или -1.
func (r *Relation) AttrIndex(name string) int {
	for i, a := range r.Attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// SameHeader проверяет, совпадают ли заголовки двух отношений
// (имена и типы атрибутов; имя relation не учитывается).
func (r *Relation) SameHeader(other *Relation) bool {
	if len(r.Attributes) != len(other.Attributes) {
		return false
	}
	for i, a := range r.Attributes {
		if other.Attributes[i] != a {
			return false
		}
	}
	return true
}

// Parse читает ARFF из потока.
func Parse(rd io.Reader) (*Relation, error) {
	rel := &Relation{}
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	inData := false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		if inData {
			row := splitRow(line)
			if len(row) != len(rel.Attributes) {
				return nil, fmt.Errorf("%w: line %d has %d values, want %d",
					ErrRowWidth, lineNo, len(row), len(rel.Attributes))
			}
			rel.Rows = append(rel.Rows, row)
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "@relation"):
			rel.Name = strings.TrimSpace(line[len("@relation"):])

		case strings.HasPrefix(lower, "@attribute"):
			rest := strings.TrimSpace(line[len("@attribute"):])
			name, spec, ok := splitAttribute(rest)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: %q", ErrBadAttribute, lineNo, line)
			}
			rel.Attributes = append(rel.Attributes, Attribute{Name: name, Spec: spec})

		case strings.HasPrefix(lower, "@data"):
			if rel.Name == "" {
				return nil, ErrNoRelation
			}
			inData = true

		default:
			return nil, fmt.Errorf("arff: line %d: unexpected directive %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("arff: read: %w", err)
	}
	if !inData {
		return nil, ErrNoData
	}
	return rel, nil
}

// ReadFile читает ARFF из файла.
func ReadFile(path string) (*Relation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arff: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Write записывает отношение в поток.
func (r *Relation) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "@relation %s\n\n", r.Name)
	for _, a := range r.Attributes {
		fmt.Fprintf(bw, "@attribute %s %s\n", a.Name, a.Spec)
	}
	fmt.Fprint(bw, "\n@data\n")
	for _, row := range r.Rows {
		fmt.Fprintln(bw, strings.Join(row, ","))
	}
	return bw.Flush()
}

// WriteFile записывает отношение в файл.
func (r *Relation) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("arff: %w", err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// splitAttribute делит "@attribute name spec" на имя и тип.
func splitAttribute(rest string) (name, spec string, ok bool) {
	i := strings.IndexAny(rest, " \t")
	if i < 0 {
		return "", "", false
	}
	name = rest[:i]
	spec = strings.TrimSpace(rest[i+1:])
	if name == "" || spec == "" {
		return "", "", false
	}
	return name, spec, true
}

// splitRow делит строку данных по запятым с обрезкой пробелов.
func splitRow(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
