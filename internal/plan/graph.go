package plan

import (
	"fmt"
	"strings"
	"sync"
)

// Graph — граф зависимостей плана.
//
// Graph — единственный владелец узлов: все узлы лежат в арене,
// индексированной по ID, рёбра хранятся как множества ID на обоих
// концах. Инварианты:
//
//   - ID уникальны на всё время жизни графа.
//   - Рёбра симметричны: если B в prerequisites узла A,
//     то A в dependents узла B, и наоборот.
//   - Отношение prerequisite ациклично (проверяется Sort).
//
// Построение графа — однопоточная фаза планирования; исключение —
// генерация ID, защищённая мьютексом. Во время выполнения все вызовы
// MarkDone сериализуются тем же мьютексом.
type Graph struct {
	mu sync.Mutex

	// nodes — арена узлов (ID → Node).
	nodes map[string]*Node

	// seq — ID в порядке вставки, для детерминированных обходов.
	seq []string

	// lastID — счётчик для генерации ID, свой у каждого графа.
	lastID int
}

// NewGraph создаёт пустой граф со своим счётчиком ID.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// NewNode создаёт узел и регистрирует его в графе.
//
// ID порождается из префикса и монотонного счётчика графа: "train[17]".
// Параметры и списки артефактов копируются — узел не разделяет
// изменяемое состояние с вызывающим кодом.
//
// Узел без prerequisites стартует в PENDING.
func (g *Graph) NewNode(prefix, unit string, params map[string]string, inputs, outputs []string) (*Node, error) {
	g.mu.Lock()
	g.lastID++
	id := fmt.Sprintf("%s[%d]", prefix, g.lastID)
	g.mu.Unlock()

	n := &Node{
		id:         id,
		Unit:       unit,
		Params:     copyParams(params),
		Inputs:     copyPaths(inputs),
		Outputs:    copyPaths(outputs),
		status:     StatusPending,
		order:      OrderUnset,
		prereqs:    make(map[string]struct{}),
		dependents: make(map[string]struct{}),
	}
	if err := g.insert(n); err != nil {
		return nil, err
	}
	return n, nil
}

// insert добавляет узел в арену с защитной проверкой коллизии ID.
func (g *Graph) insert(n *Node) error {
	if _, exists := g.nodes[n.id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.id)
	}
	g.nodes[n.id] = n
	g.seq = append(g.seq, n.id)
	return nil
}

// Node возвращает узел по ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes возвращает все узлы в порядке вставки.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.seq))
	for _, id := range g.seq {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Len возвращает количество узлов в графе.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddDependency регистрирует ребро prerequisite → dependent.
//
// Идемпотентна: повторный вызов для той же упорядоченной пары ничего
// не меняет. Побочный эффект: dependent безусловно переводится в
// WAITING — новая неудовлетворённая зависимость всегда отзывает
// готовность, даже если остальные prerequisites уже выполнены.
func (g *Graph) AddDependency(dependent, prerequisite *Node) {
	dependent.status = StatusWaiting

	if _, ok := dependent.prereqs[prerequisite.id]; !ok {
		dependent.prereqs[prerequisite.id] = struct{}{}
	}
	if _, ok := prerequisite.dependents[dependent.id]; !ok {
		prerequisite.dependents[dependent.id] = struct{}{}
	}
}

// LooseDependencies снимает все рёбра между узлом и любыми узлами,
// чей ID начинается с idPrefix. Рёбра удаляются с обоих концов.
// Пустой префикс соответствует всем ID — узел отвязывается полностью.
//
// Используется для отсечения рёбер шаблонного узла после того, как
// его конкретные раскрытия перепривязаны, либо для выбрасывания
// устаревших вспомогательных узлов.
func (g *Graph) LooseDependencies(n *Node, idPrefix string) {
	for id := range n.prereqs {
		if !strings.HasPrefix(id, idPrefix) {
			continue
		}
		delete(n.prereqs, id)
		if other, ok := g.nodes[id]; ok {
			delete(other.dependents, n.id)
		}
	}
	for id := range n.dependents {
		if !strings.HasPrefix(id, idPrefix) {
			continue
		}
		delete(n.dependents, id)
		if other, ok := g.nodes[id]; ok {
			delete(other.prereqs, n.id)
		}
	}
}

// Remove полностью отвязывает узел и удаляет его из арены.
func (g *Graph) Remove(n *Node) {
	g.LooseDependencies(n, "")
	delete(g.nodes, n.id)
	for i, id := range g.seq {
		if id == n.id {
			g.seq = append(g.seq[:i], g.seq[i+1:]...)
			break
		}
	}
}

// Pending возвращает готовые к запуску узлы (status == PENDING)
// в порядке вставки. Это авторитетное множество готовности для
// внешнего исполнителя; Order — лишь рекомендация для батчинга.
func (g *Graph) Pending() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []*Node
	for _, id := range g.seq {
		if n, ok := g.nodes[id]; ok && n.status == StatusPending {
			out = append(out, n)
		}
	}
	return out
}

// Done возвращает true, если каждый узел графа в статусе DONE.
func (g *Graph) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range g.nodes {
		if n.status != StatusDone {
			return false
		}
	}
	return true
}

// normalizeStatuses приводит статусы к инварианту построения:
// узел без prerequisites — PENDING, с prerequisites — WAITING.
// Вызывается после отсечения шаблонных рёбер, которое само по себе
// готовность не возвращает. DONE узлы не трогаются.
func (g *Graph) normalizeStatuses() {
	for _, n := range g.nodes {
		if n.status == StatusDone {
			continue
		}
		if len(n.prereqs) == 0 {
			n.status = StatusPending
		} else {
			n.status = StatusWaiting
		}
	}
}
