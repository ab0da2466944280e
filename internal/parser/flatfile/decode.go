package flatfile

import (
	"strconv"
	"strings"
	"time"

	"ppetl/internal/row"
	"ppetl/internal/schema"
)

// DefaultTimestampLayouts are tried in order when a timestamp column is
// decoded and no layouts are configured.
var DefaultTimestampLayouts = []string{
	"20060102 15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// decodeValue converts raw text into a value of the declared type. Empty
// text is null. Text that does not parse as the declared type is kept as
// text so no data is lost.
func decodeValue(raw string, typ schema.Type, layouts []string) row.Value {
	if raw == "" {
		return row.Null()
	}
	switch typ {
	case schema.TypeInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return row.Int(n)
		}
	case schema.TypeReal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return row.Real(f)
		}
	case schema.TypeBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return row.Bool(b)
		}
	case schema.TypeTimestamp:
		s := strings.TrimSpace(raw)
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return row.Time(t)
			}
		}
	}
	return row.Text(raw)
}
