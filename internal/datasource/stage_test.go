package datasource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"
)

type failingSource struct{ err error }

func (f failingSource) Open(context.Context) (io.ReadCloser, error) { return nil, f.err }

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestStageCopiesAndDigests(t *testing.T) {
	t.Parallel()

	const payload = "SQLite format 3\x00rest of file"
	dir := t.TempDir()
	st, err := Stage(context.Background(), ReaderSource{R: strings.NewReader(payload)}, dir, "")
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	defer st.Remove()

	got, err := os.ReadFile(st.Path)
	if err != nil {
		t.Fatalf("read staged: %v", err)
	}
	if string(got) != payload || st.Size != int64(len(payload)) {
		t.Fatalf("staged %d bytes %q", st.Size, got)
	}
	if st.Digest != xxh3.HashString(payload) {
		t.Fatalf("digest = %x, want %x", st.Digest, xxh3.HashString(payload))
	}
	if filepath.Dir(st.Path) != dir {
		t.Fatalf("staged in %s, want %s", filepath.Dir(st.Path), dir)
	}

	if err := st.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(st.Path); !os.IsNotExist(err) {
		t.Fatalf("staged file still present: %v", err)
	}
	if err := st.Remove(); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestStageLeavesNothingOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Stage(context.Background(), ReaderSource{R: brokenReader{}}, dir, ""); err == nil {
		t.Fatal("Stage succeeded on a failing reader")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not empty: %v", entries)
	}
}

func TestStageOpenError(t *testing.T) {
	t.Parallel()

	want := errors.New("no access")
	if _, err := Stage(context.Background(), failingSource{want}, t.TempDir(), ""); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestStageCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	src := ReaderSource{R: strings.NewReader("x")}
	if _, err := Stage(ctx, src, dir, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDigestReader(t *testing.T) {
	t.Parallel()

	d := NewDigestReader(strings.NewReader("#21:1,a\n"))
	if _, err := io.Copy(io.Discard, d); err != nil {
		t.Fatal(err)
	}
	if d.N() != 8 || d.Sum64() != xxh3.HashString("#21:1,a\n") {
		t.Fatalf("N=%d sum=%x", d.N(), d.Sum64())
	}
}

func TestNameOf(t *testing.T) {
	t.Parallel()

	if got := NameOf(failingSource{}); got != "stream" {
		t.Fatalf("NameOf(unnamed) = %q", got)
	}
	if got := NameOf(ReaderSource{Label: "upload"}); got != "upload" {
		t.Fatalf("NameOf(labelled) = %q", got)
	}
}
