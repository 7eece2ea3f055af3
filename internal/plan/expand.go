package plan

import (
	"fmt"
	"strings"
)

// Wildcard-токены в путях артефактов.
const (
	// tokenSingle раскрывается во всех входных путях шаблона.
	tokenSingle = "*"

	// tokenTriple раскрывается только в одном явно выбранном
	// входном слоте.
	tokenTriple = "***"
)

// Expand порождает из шаблонного узла конкретный узел, подставляя
// replacement вместо единственного "*" в каждом входном пути.
//
// Новый узел получает ID "template#replacement" и регистрируется в
// графе. Параметры и списки артефактов копируются глубоко — раскрытые
// узлы не разделяют изменяемое состояние ни с шаблоном, ни друг с
// другом. Входной путь с нулём или несколькими "*" остаётся без
// изменений (молчаливый проход, не ошибка).
//
// Рёбра шаблона копируются на новый узел (симметрично, на обоих
// концах): после подстановки они, вообще говоря, недействительны,
// и вызывающий код обязан их переразрешить по совпадению артефактов.
// Сам шаблон никогда не мутируется.
func (g *Graph) Expand(template *Node, replacement string) (*Node, error) {
	clone, err := g.clone(template, replacement)
	if err != nil {
		return nil, err
	}
	for i, elem := range clone.Inputs {
		clone.Inputs[i] = substitute(elem, tokenSingle, replacement)
	}
	return clone, nil
}

// ExpandAt — как Expand, но подставляет replacement вместо "***"
// только во входном слоте inputIndex; остальные пути артефактов не
// трогаются, даже если тоже содержат "***". Слот с нулём или
// несколькими вхождениями токена остаётся без изменений.
//
// Индекс вне диапазона — ошибка ErrInputIndex.
func (g *Graph) ExpandAt(template *Node, replacement string, inputIndex int) (*Node, error) {
	if inputIndex < 0 || inputIndex >= len(template.Inputs) {
		return nil, fmt.Errorf("%w: %d (node %s has %d inputs)",
			ErrInputIndex, inputIndex, template.id, len(template.Inputs))
	}
	clone, err := g.clone(template, replacement)
	if err != nil {
		return nil, err
	}
	clone.Inputs[inputIndex] = substitute(clone.Inputs[inputIndex], tokenTriple, replacement)
	return clone, nil
}

// clone создаёт глубокую копию шаблона с ID "template#suffix"
// и копирует его рёбра на обоих концах.
func (g *Graph) clone(template *Node, idSuffix string) (*Node, error) {
	n := &Node{
		id:         template.id + "#" + idSuffix,
		Unit:       template.Unit,
		Params:     copyParams(template.Params),
		Inputs:     copyPaths(template.Inputs),
		Outputs:    copyPaths(template.Outputs),
		status:     template.status,
		order:      template.order,
		prereqs:    make(map[string]struct{}, len(template.prereqs)),
		dependents: make(map[string]struct{}, len(template.dependents)),
	}
	if err := g.insert(n); err != nil {
		return nil, err
	}

	for id := range template.prereqs {
		n.prereqs[id] = struct{}{}
		if other, ok := g.nodes[id]; ok {
			other.dependents[n.id] = struct{}{}
		}
	}
	for id := range template.dependents {
		n.dependents[id] = struct{}{}
		if other, ok := g.nodes[id]; ok {
			other.prereqs[n.id] = struct{}{}
		}
	}
	return n, nil
}

// substitute заменяет единственное вхождение токена в пути.
// Путь с нулём или несколькими вхождениями возвращается как есть.
func substitute(elem, token, replacement string) string {
	pos := strings.Index(elem, token)
	if pos == -1 || pos != strings.LastIndex(elem, token) {
		return elem
	}
	return elem[:pos] + replacement + elem[pos+len(token):]
}

// matchPattern сопоставляет конкретный путь с шаблонным и извлекает
// строку, закрытую токеном: для pattern "data/*.arff" и candidate
// "data/fold1.arff" результат — "fold1".
//
// Кандидаты, сами содержащие wildcard, никогда не совпадают.
func matchPattern(pattern, token, candidate string) (string, bool) {
	pos := strings.Index(pattern, token)
	if pos == -1 || pos != strings.LastIndex(pattern, token) {
		return "", false
	}
	if strings.Contains(candidate, tokenSingle) {
		return "", false
	}
	prefix := pattern[:pos]
	suffix := pattern[pos+len(token):]
	if len(candidate) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(candidate, prefix) || !strings.HasSuffix(candidate, suffix) {
		return "", false
	}
	mid := candidate[len(prefix) : len(candidate)-len(suffix)]
	if mid == "" {
		return "", false
	}
	return mid, true
}
