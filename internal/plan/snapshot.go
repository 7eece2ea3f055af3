package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeState — сериализуемое представление узла для чекпойнта или
// передачи между процессами.
//
// Смежность хранится списками ID, а не вложенными структурами,
// чтобы не сериализовать циклы объектного графа напрямую.
type NodeState struct {
	ID            string            `json:"id"`
	Unit          string            `json:"unit"`
	Params        map[string]string `json:"params,omitempty"`
	Inputs        []string          `json:"inputs,omitempty"`
	Outputs       []string          `json:"outputs,omitempty"`
	Status        Status            `json:"status"`
	Order         int               `json:"order"`
	Prerequisites []string          `json:"prerequisites,omitempty"`
	Dependents    []string          `json:"dependents,omitempty"`
}

// Snapshot возвращает сериализуемый срез всего плана в порядке
// вставки узлов.
func (g *Graph) Snapshot() []NodeState {
	g.mu.Lock()
	defer g.mu.Unlock()

	states := make([]NodeState, 0, len(g.seq))
	for _, id := range g.seq {
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		states = append(states, NodeState{
			ID:            n.id,
			Unit:          n.Unit,
			Params:        copyParams(n.Params),
			Inputs:        copyPaths(n.Inputs),
			Outputs:       copyPaths(n.Outputs),
			Status:        n.status,
			Order:         n.order,
			Prerequisites: sortedIDs(n.prereqs),
			Dependents:    sortedIDs(n.dependents),
		})
	}
	return states
}

// Restore восстанавливает план из чекпойнта.
//
// Рёбра восстанавливаются из списков prerequisites (зеркальная
// сторона выводится из симметрии); ссылка на отсутствующий узел —
// ошибка ErrUnknownNode. Счётчик ID графа поднимается до максимума
// из восстановленных ID, чтобы новые узлы не коллидировали.
func Restore(states []NodeState) (*Graph, error) {
	g := NewGraph()

	for _, st := range states {
		n := &Node{
			id:         st.ID,
			Unit:       st.Unit,
			Params:     copyParams(st.Params),
			Inputs:     copyPaths(st.Inputs),
			Outputs:    copyPaths(st.Outputs),
			status:     st.Status,
			order:      st.Order,
			prereqs:    make(map[string]struct{}, len(st.Prerequisites)),
			dependents: make(map[string]struct{}, len(st.Dependents)),
		}
		if err := g.insert(n); err != nil {
			return nil, err
		}
		if seq := idCounter(st.ID); seq > g.lastID {
			g.lastID = seq
		}
	}

	for _, st := range states {
		n := g.nodes[st.ID]
		for _, pid := range st.Prerequisites {
			p, ok := g.nodes[pid]
			if !ok {
				return nil, fmt.Errorf("%w: %s (prerequisite of %s)", ErrUnknownNode, pid, st.ID)
			}
			n.prereqs[pid] = struct{}{}
			p.dependents[n.id] = struct{}{}
		}
	}

	return g, nil
}

// idCounter извлекает счётчик из ID вида "train[17]" или
// "train[17]#fold1". Возвращает 0, если ID не в счётчиковой схеме.
func idCounter(id string) int {
	if i := strings.IndexByte(id, '#'); i >= 0 {
		id = id[:i]
	}
	open := strings.LastIndexByte(id, '[')
	if open < 0 || !strings.HasSuffix(id, "]") {
		return 0
	}
	seq, err := strconv.Atoi(id[open+1 : len(id)-1])
	if err != nil {
		return 0
	}
	return seq
}
