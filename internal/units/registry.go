package units

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр модулей по имени.
//
// Хранит конструкторы, а не экземпляры: модуль создаётся заново
// под каждый запуск и валидируется конструктором. Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	units map[string]Constructor
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		units: make(map[string]Constructor),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными модулями.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(unitFileMerger, newFileMerger)
	r.Register(unitDataMerger, newDataMerger)
	r.Register(unitAttributeFilter, newAttributeFilter)
	r.Register(unitFoldSplit, newFoldSplit)
	r.Register(unitMajorityClassifier, newMajorityClassifier)

	return r
}

// Register регистрирует конструктор модуля.
// Повторная регистрация имени перезаписывает конструктор.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[name] = ctor
}

// New создаёт модуль по имени из задания.
// Возвращает ErrUnitNotFound, если имя не зарегистрировано.
func (r *Registry) New(name string, spec Spec) (Unit, error) {
	r.mu.RLock()
	ctor, exists := r.units[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, name)
	}
	return ctor(spec)
}

// Has проверяет, зарегистрирован ли модуль.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.units[name]
	return exists
}

// Names возвращает отсортированный список имён модулей.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.units))
	for n := range r.units {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count возвращает количество зарегистрированных модулей.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}
