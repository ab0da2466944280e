package flatfile

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	quoteOpen  = `<"`
	quoteClose = `">`
)

// TokenType classifies tokens returned by Tokenizer.Next.
type TokenType int

const (
	TokenWord TokenType = iota
	TokenEOL
	TokenEOF
)

// Token is one tokenizer result. Quoted is set on words assembled from a
// <"…"> span; the markers themselves are removed from Text.
type Token struct {
	Type   TokenType
	Text   string
	Quoted bool

	// afterDelim marks a raw line end directly preceded by the delimiter.
	afterDelim bool
}

// state is the only thing carried between raw tokens: an open quoted span
// waiting for its close marker.
type state struct {
	pending string
	open    bool
	// glue is false right after a line break inside the span, so the next
	// raw token is appended without a delimiter.
	glue bool
}

// step folds one raw token into st. It returns the new state and, when a
// logical token is complete, that token with emit set.
func step(st state, raw Token, delim rune) (next state, out Token, emit bool, err error) {
	switch raw.Type {
	case TokenEOF:
		if st.open {
			return st, Token{}, false, ErrUnterminatedQuote
		}
		return state{}, raw, true, nil

	case TokenEOL:
		if st.open {
			if raw.afterDelim && st.glue {
				st.pending += string(delim)
			}
			st.pending += "\n"
			st.glue = false
			return st, Token{}, false, nil
		}
		return st, Token{Type: TokenEOL}, true, nil
	}

	text := raw.Text
	if st.open {
		if st.glue {
			text = st.pending + string(delim) + text
		} else {
			text = st.pending + text
		}
		if !strings.HasSuffix(raw.Text, quoteClose) {
			return state{pending: text, open: true, glue: true}, Token{}, false, nil
		}
		return state{}, Token{Type: TokenWord, Text: unquote(text), Quoted: true}, true, nil
	}

	if strings.HasPrefix(text, quoteOpen) {
		if len(text) >= len(quoteOpen)+len(quoteClose) && strings.HasSuffix(text, quoteClose) {
			return st, Token{Type: TokenWord, Text: unquote(text), Quoted: true}, true, nil
		}
		return state{pending: text, open: true, glue: true}, Token{}, false, nil
	}
	return st, raw, true, nil
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, quoteOpen)
	return strings.TrimSuffix(s, quoteClose)
}

// Tokenizer splits a character stream into delimiter-separated words and
// line ends. It is lazy and forward-only.
//
// An empty word is reported only when a delimiter terminates it, so blank
// lines and a trailing delimiter before a line break produce no word.
// Inside a quoted span that delimiter is kept in the assembled text.
// Carriage returns preceding a line feed are dropped.
type Tokenizer struct {
	r     *bufio.Reader
	delim rune
	st    state
	raw   int

	eolNext    bool
	eof        bool
	afterDelim bool
	buf        strings.Builder
}

// NewTokenizer returns a tokenizer reading from r. A zero delim selects ','.
func NewTokenizer(r io.Reader, delim rune) *Tokenizer {
	if delim == 0 {
		delim = ','
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 1<<16)
	}
	return &Tokenizer{r: br, delim: delim}
}

// Tokens returns the number of raw tokens read so far.
func (t *Tokenizer) Tokens() int { return t.raw }

// Next returns the next logical token. After TokenEOF every call returns
// TokenEOF again. A stream ending inside a quoted span yields
// ErrUnterminatedQuote.
func (t *Tokenizer) Next() (Token, error) {
	for {
		raw, err := t.scan()
		if err != nil {
			return Token{}, err
		}
		st, tok, emit, err := step(t.st, raw, t.delim)
		if err != nil {
			return Token{}, err
		}
		t.st = st
		if emit {
			return tok, nil
		}
	}
}

// scan reads one raw token.
func (t *Tokenizer) scan() (Token, error) {
	if t.eolNext {
		t.eolNext = false
		t.raw++
		return Token{Type: TokenEOL}, nil
	}
	if t.eof {
		return Token{Type: TokenEOF}, nil
	}

	t.buf.Reset()
	afterDelim := t.afterDelim
	t.afterDelim = false
	for {
		c, _, err := t.r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return Token{}, err
			}
			t.eof = true
			text := strings.TrimSuffix(t.buf.String(), "\r")
			if text == "" {
				return Token{Type: TokenEOF}, nil
			}
			t.raw++
			return Token{Type: TokenWord, Text: text}, nil
		}

		switch c {
		case t.delim:
			t.raw++
			t.afterDelim = true
			return Token{Type: TokenWord, Text: t.buf.String()}, nil
		case '\n':
			t.raw++
			text := strings.TrimSuffix(t.buf.String(), "\r")
			if text == "" {
				return Token{Type: TokenEOL, afterDelim: afterDelim}, nil
			}
			t.eolNext = true
			return Token{Type: TokenWord, Text: text}, nil
		default:
			t.buf.WriteRune(c)
		}
	}
}
