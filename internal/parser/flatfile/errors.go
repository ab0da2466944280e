package flatfile

import (
	"errors"
	"fmt"
)

// ErrUnterminatedQuote is returned when the stream ends inside a <"…"> span.
var ErrUnterminatedQuote = errors.New("unterminated quoted span")

// ParseError reports a fatal problem with the token stream. Tokens is the
// number of raw tokens consumed when the failure was detected and Header is
// the last record header seen (empty when none was).
type ParseError struct {
	Tokens int
	Header string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Header == "" {
		return fmt.Sprintf("flatfile: after %d tokens: %v", e.Tokens, e.Err)
	}
	return fmt.Sprintf("flatfile: after %d tokens (last header %q): %v", e.Tokens, e.Header, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
