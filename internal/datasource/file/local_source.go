// Package file implements the local filesystem source for project files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Local opens a project file from local disk. It is safe for concurrent use.
type Local struct{ path string }

// NewLocal returns a Local source for path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Name implements datasource.Named.
func (l *Local) Name() string { return l.path }

// Open opens the file for reading. A context that is already done wins over
// touching the filesystem. Filesystem errors keep their identity for
// errors.Is (for example os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Peek returns up to n leading bytes of the file. A file shorter than n
// yields what is there.
func (l *Local) Peek(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.New("file: peek size must be > 0")
	}
	rc, err := l.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, n)
	m, err := io.ReadFull(rc, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("peek %s: %w", l.path, err)
	}
	return buf[:m], nil
}
