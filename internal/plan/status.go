package plan

// MarkDone помечает узел выполненным и каскадно обновляет зависимые.
//
// Для каждого dependent узла в статусе WAITING заново проверяются
// *все* его prerequisites; если каждый из них DONE, dependent
// переводится в PENDING. Узлы, уже находящиеся в PENDING или DONE,
// не трогаются. Повторный MarkDone на том же узле идемпотентен
// относительно статусов зависимых.
//
// Все вызовы MarkDone сериализуются мьютексом графа: каскад читает
// и пишет общие поля смежности и статусов, и параллельные завершения
// разных узлов иначе могли бы гоняться за статусом общего dependent.
func (g *Graph) MarkDone(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n.status = StatusDone

	for id := range n.dependents {
		dep, ok := g.nodes[id]
		if !ok || dep.status != StatusWaiting {
			continue
		}
		if g.allPrereqsDone(dep) {
			dep.status = StatusPending
		}
	}
}

// allPrereqsDone возвращает true, если каждый prerequisite узла DONE.
// Полный прогон по prerequisites — O(in-degree) на завершение, но
// наблюдаемые переходы в точности соответствуют контракту каскада.
func (g *Graph) allPrereqsDone(n *Node) bool {
	for id := range n.prereqs {
		p, ok := g.nodes[id]
		if !ok || p.status != StatusDone {
			return false
		}
	}
	return true
}
