package flatfile

import (
	"strconv"
	"strings"
)

// Header is a decoded record header token.
//
//	#21:100   table 21, first value "100"
//	#21:=     table 21, no value
//	#21:7-    table 21, no value
type Header struct {
	Raw      string
	Code     int
	Value    string
	HasValue bool
}

// ParseHeader decodes tok as a record header. ok is false when tok does not
// start with '#', has no ':' separator, or carries a non-numeric table code.
func ParseHeader(tok string) (h Header, ok bool) {
	if !strings.HasPrefix(tok, "#") {
		return Header{}, false
	}
	idx := strings.LastIndexByte(tok, ':')
	if idx < 0 {
		return Header{}, false
	}

	h.Raw = tok
	head := tok
	if !strings.HasSuffix(tok, "-") && !strings.HasSuffix(tok, "=") {
		head = tok[:idx]
		h.Value = tok[idx+1:]
		h.HasValue = true
	}

	code := head[1:]
	if i := strings.IndexByte(code, ':'); i >= 0 {
		code = code[:i]
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 0 {
		return Header{}, false
	}
	h.Code = n
	return h, true
}
