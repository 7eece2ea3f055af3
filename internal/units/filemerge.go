package units

import (
	"context"
	"fmt"
	"io"
	"os"
)

const unitFileMerger = "file-merger"

// fileMerger склеивает входные файлы в один выходной побайтово,
// в порядке перечисления входов.
type fileMerger struct {
	spec Spec
}

func newFileMerger(spec Spec) (Unit, error) {
	if err := requireArity(spec, -1, 1); err != nil {
		return nil, err
	}
	return &fileMerger{spec: spec}, nil
}

func (u *fileMerger) Name() string { return unitFileMerger }

func (u *fileMerger) Perform(ctx context.Context) error {
	out, err := os.Create(u.spec.OutputPaths()[0])
	if err != nil {
		return fmt.Errorf("%s: %w", unitFileMerger, err)
	}

	for _, path := range u.spec.InputPaths() {
		if err := ctx.Err(); err != nil {
			out.Close()
			return err
		}
		if err := appendFile(out, path); err != nil {
			out.Close()
			return fmt.Errorf("%s: %w", unitFileMerger, err)
		}
	}
	return out.Close()
}

func appendFile(dst io.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
