package plan

import "strings"

// ResolveDependencies выводит рёбра графа из совпадений артефактов.
//
// Правило сопоставления: два шага связываются, когда выходной путь
// одного в точности (строковое равенство) совпадает со входным путём
// другого. Пути с wildcard никогда не совпадают точно и потому сами
// рёбер не порождают — шаблоны связываются только после раскрытия.
//
// Вызов идемпотентен: AddDependency не создаёт дубликатов, поэтому
// переразрешение всего графа после раскрытия шаблонов безопасно.
func ResolveDependencies(g *Graph) {
	// consumers: путь артефакта → узлы, ожидающие его на входе.
	consumers := make(map[string][]*Node)
	for _, n := range g.Nodes() {
		for _, in := range n.Inputs {
			if strings.Contains(in, "*") {
				continue
			}
			consumers[in] = append(consumers[in], n)
		}
	}

	for _, producer := range g.Nodes() {
		for _, out := range producer.Outputs {
			if strings.Contains(out, "*") {
				continue
			}
			for _, consumer := range consumers[out] {
				if consumer == producer {
					continue
				}
				g.AddDependency(consumer, producer)
			}
		}
	}
}
