package units

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// Ошибки модулей.
var (
	// ErrUnitNotFound — имя модуля не найдено в реестре.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrArity — число входов или выходов не подходит модулю.
	ErrArity = errors.New("wrong number of inputs or outputs")

	// ErrMissingParam — отсутствует обязательный параметр.
	ErrMissingParam = errors.New("missing required parameter")

	// ErrBadParam — недопустимое значение параметра.
	ErrBadParam = errors.New("invalid parameter value")
)

// Unit — интерфейс вычислительного модуля.
//
// Модуль получает готовые пути входов и выходов в Spec и выполняет
// работу целиком в Perform. Модуль должен проверять ctx.Done()
// в длинных циклах для graceful shutdown.
type Unit interface {
	// Name возвращает имя модуля.
	Name() string

	// Perform выполняет модуль: читает входы, пишет выходы.
	Perform(ctx context.Context) error
}

// Spec — задание для одного запуска модуля.
type Spec struct {
	// ID — идентификатор узла плана, для сообщений об ошибках.
	ID string

	// Params — параметры из описания шага.
	Params map[string]string

	// Inputs — входные файлы. Относительные пути разрешаются
	// от WorkDir.
	Inputs []string

	// Outputs — выходные файлы, разрешаются так же.
	Outputs []string

	// WorkDir — рабочий каталог запуска.
	WorkDir string
}

// Constructor создаёт модуль из задания, валидируя его.
type Constructor func(spec Spec) (Unit, error)

// InputPaths возвращает абсолютные пути входов.
func (s Spec) InputPaths() []string {
	return s.resolveAll(s.Inputs)
}

// OutputPaths возвращает абсолютные пути выходов.
func (s Spec) OutputPaths() []string {
	return s.resolveAll(s.Outputs)
}

// Param возвращает обязательный параметр или ErrMissingParam.
func (s Spec) Param(key string) (string, error) {
	v, ok := s.Params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s: %q", ErrMissingParam, s.ID, key)
	}
	return v, nil
}

// ParamDefault возвращает параметр или значение по умолчанию.
func (s Spec) ParamDefault(key, def string) string {
	if v, ok := s.Params[key]; ok && v != "" {
		return v
	}
	return def
}

func (s Spec) resolveAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) || s.WorkDir == "" {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(s.WorkDir, p)
	}
	return out
}

// requireArity проверяет число входов и выходов задания.
// Отрицательное want означает "один и более".
func requireArity(spec Spec, wantIn, wantOut int) error {
	if wantIn < 0 {
		if len(spec.Inputs) < 1 {
			return fmt.Errorf("%w: %s: need at least 1 input, got %d",
				ErrArity, spec.ID, len(spec.Inputs))
		}
	} else if len(spec.Inputs) != wantIn {
		return fmt.Errorf("%w: %s: need %d inputs, got %d",
			ErrArity, spec.ID, wantIn, len(spec.Inputs))
	}
	if wantOut < 0 {
		if len(spec.Outputs) < 1 {
			return fmt.Errorf("%w: %s: need at least 1 output, got %d",
				ErrArity, spec.ID, len(spec.Outputs))
		}
	} else if len(spec.Outputs) != wantOut {
		return fmt.Errorf("%w: %s: need %d outputs, got %d",
			ErrArity, spec.ID, wantOut, len(spec.Outputs))
	}
	return nil
}
