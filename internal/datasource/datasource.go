// Package datasource abstracts where project input bytes come from (local
// files, HTTP downloads) and provides helpers shared by all sources: staging
// a stream into a temporary file and digesting input as it is read.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh stream of input bytes. Callers close the stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Named is implemented by sources that can describe their location for logs
// and error messages.
type Named interface {
	Name() string
}

// NameOf returns the source's name, or "stream" when it has none.
func NameOf(s Source) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "stream"
}

// ReaderSource adapts an already open reader. It can be opened once.
type ReaderSource struct {
	R     io.Reader
	Label string
}

// Open returns the wrapped reader. The returned closer does not close R.
func (s ReaderSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(s.R), nil
}

// Name implements Named.
func (s ReaderSource) Name() string {
	if s.Label == "" {
		return "stream"
	}
	return s.Label
}
