package plan

import "sort"

// Status — статус готовности узла плана.
//
// Машина состояний:
//
//	PENDING ⇄ WAITING (появление/исчезновение невыполненных prerequisites)
//	PENDING → DONE    (успешное завершение; терминальный статус)
//
// Узел никогда не регрессирует из DONE.
type Status string

const (
	// StatusPending — все prerequisites выполнены, узел готов к запуску.
	StatusPending Status = "PENDING"

	// StatusWaiting — хотя бы один prerequisite ещё не выполнен.
	StatusWaiting Status = "WAITING"

	// StatusDone — узел успешно выполнен.
	StatusDone Status = "DONE"
)

// OrderUnset — значение Order до топологической сортировки.
const OrderUnset = -1

// Node — узел плана: один шаг эксперимента.
//
// Узел хранит идентичность, ссылку на вычислительный модуль, списки
// артефактов и смежность. Рёбра — множества ID соседей, а не прямые
// ссылки: владельцем всех узлов является Graph.
type Node struct {
	// id — глобально уникальный ID: "train[17]" для обычных узлов,
	// "train[17]#fold1" для узлов, порождённых раскрытием шаблона.
	id string

	// Unit — имя подключаемого вычислительного модуля.
	Unit string

	// Params — параметры модуля; непрозрачны для графа.
	Params map[string]string

	// Inputs — упорядоченные пути входных артефактов
	// (до раскрытия могут содержать wildcards).
	Inputs []string

	// Outputs — упорядоченные пути выходных артефактов.
	Outputs []string

	// status мутируется только каскадом MarkDone и нормализацией
	// статусов при построении плана.
	status Status

	// order — номер стадии после топологической сортировки,
	// OrderUnset до неё. Назначается один раз и не меняется.
	order int

	// prereqs — ID узлов, от которых зависит этот узел (back-edges).
	prereqs map[string]struct{}

	// dependents — ID узлов, зависящих от этого (forward-edges).
	dependents map[string]struct{}
}

// ID возвращает уникальный идентификатор узла.
func (n *Node) ID() string {
	return n.id
}

// Status возвращает текущий статус узла.
func (n *Node) Status() Status {
	return n.status
}

// Order возвращает номер стадии узла, или OrderUnset до сортировки.
func (n *Node) Order() int {
	return n.order
}

// Prerequisites возвращает отсортированные ID узлов,
// от которых зависит этот узел.
func (n *Node) Prerequisites() []string {
	return sortedIDs(n.prereqs)
}

// Dependents возвращает отсортированные ID узлов,
// зависящих от этого узла.
func (n *Node) Dependents() []string {
	return sortedIDs(n.dependents)
}

// HasPrerequisite проверяет наличие обратного ребра к узлу с данным ID.
func (n *Node) HasPrerequisite(id string) bool {
	_, ok := n.prereqs[id]
	return ok
}

// HasDependent проверяет наличие прямого ребра к узлу с данным ID.
func (n *Node) HasDependent(id string) bool {
	_, ok := n.dependents[id]
	return ok
}

// allPrereqsOrdered возвращает true, если каждый prerequisite узла уже
// получил топологический порядок. Для узла без prerequisites — true.
func (n *Node) allPrereqsOrdered(g *Graph) bool {
	for id := range n.prereqs {
		if p, ok := g.nodes[id]; !ok || p.order < 0 {
			return false
		}
	}
	return true
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func copyPaths(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}
