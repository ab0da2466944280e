package datasource

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/zeebo/xxh3"
)

// Staged is a source copied to a temporary file.
type Staged struct {
	Path   string
	Size   int64
	Digest uint64 // xxh3 of the staged bytes
}

// Remove deletes the staged file. Removing twice is not an error.
func (s *Staged) Remove() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("datasource: remove staged %s: %w", s.Path, err)
	}
	return nil
}

// Stage copies src into a new temporary file in dir (os.TempDir when empty)
// and returns it. On failure nothing is left on disk. The caller must call
// Remove on success.
func Stage(ctx context.Context, src Source, dir, pattern string) (*Staged, error) {
	if pattern == "" {
		pattern = "ppetl-*"
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			log.Printf("datasource: close %s: %v", NameOf(src), cerr)
		}
	}()

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("datasource: create temp file: %w", err)
	}
	discard := func() {
		_ = f.Close()
		if rerr := os.Remove(f.Name()); rerr != nil {
			log.Printf("datasource: remove %s: %v", f.Name(), rerr)
		}
	}

	h := xxh3.New()
	n, err := io.Copy(io.MultiWriter(f, h), &ctxReader{ctx: ctx, r: rc})
	if err != nil {
		discard()
		return nil, fmt.Errorf("datasource: stage %s: %w", NameOf(src), err)
	}
	if err := f.Close(); err != nil {
		discard()
		return nil, fmt.Errorf("datasource: stage %s: %w", NameOf(src), err)
	}
	return &Staged{Path: f.Name(), Size: n, Digest: h.Sum64()}, nil
}

// DigestReader hashes everything read through it.
type DigestReader struct {
	r io.Reader
	h *xxh3.Hasher
	n int64
}

// NewDigestReader wraps r.
func NewDigestReader(r io.Reader) *DigestReader {
	return &DigestReader{r: r, h: xxh3.New()}
}

func (d *DigestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		_, _ = d.h.Write(p[:n])
		d.n += int64(n)
	}
	return n, err
}

// Sum64 returns the xxh3 digest of the bytes read so far.
func (d *DigestReader) Sum64() uint64 { return d.h.Sum64() }

// N returns the number of bytes read so far.
func (d *DigestReader) N() int64 { return d.n }

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
