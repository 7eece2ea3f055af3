package plan

// Sort назначает каждому узлу номер стадии так, что порядок любого
// prerequisite строго меньше порядка его dependents.
//
// Алгоритм — проходами: в одном проходе собираются все узлы, у которых
// каждый prerequisite уже отсортирован (узел без prerequisites подходит
// тривиально), затем всем собранным назначается общий номер стадии.
// Узлы одной стадии взаимно независимы и могут выполняться параллельно.
//
// Если полный проход не назначает ничего, а неотсортированные узлы
// остаются — в графе цикл; возвращается CycleError со списком
// застрявших узлов, и ни один узел цикла порядок не получает.
func (g *Graph) Sort() error {
	for _, n := range g.nodes {
		n.order = OrderUnset
	}

	remaining := len(g.nodes)
	stage := 0

	for remaining > 0 {
		var batch []*Node
		for _, id := range g.seq {
			n, ok := g.nodes[id]
			if !ok || n.order >= 0 {
				continue
			}
			if n.allPrereqsOrdered(g) {
				batch = append(batch, n)
			}
		}

		if len(batch) == 0 {
			return &CycleError{Remaining: g.unsortedIDs()}
		}

		// Назначение откладывается до конца прохода: узел, чей
		// prerequisite попал в тот же проход, сюда не попадает,
		// поэтому порядок prerequisite всегда строго меньше.
		for _, n := range batch {
			n.order = stage
		}
		stage++
		remaining -= len(batch)
	}

	return nil
}

// unsortedIDs возвращает ID узлов без назначенного порядка,
// в порядке вставки.
func (g *Graph) unsortedIDs() []string {
	var ids []string
	for _, id := range g.seq {
		if n, ok := g.nodes[id]; ok && n.order < 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Stages группирует узлы по номеру стадии после Sort.
// Индекс слайса — номер стадии, элементы — узлы в порядке вставки.
func (g *Graph) Stages() [][]*Node {
	var stages [][]*Node
	for _, id := range g.seq {
		n, ok := g.nodes[id]
		if !ok || n.order < 0 {
			continue
		}
		for len(stages) <= n.order {
			stages = append(stages, nil)
		}
		stages[n.order] = append(stages[n.order], n)
	}
	return stages
}
