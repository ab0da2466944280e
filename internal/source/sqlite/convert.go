package sqlite

import (
	"strconv"
	"strings"
	"time"

	"ppetl/internal/row"
)

// convert turns one scanned driver value into a row value, steering it
// towards the declared kind where the stored value allows it. SQLite is
// dynamically typed, so a column declared INTEGER may still hold text; such
// values are kept as they were stored.
func (d *DB) convert(v any, want row.Kind) row.Value {
	switch x := v.(type) {
	case nil:
		return row.Null()
	case int64:
		switch want {
		case row.KindBool:
			return row.Bool(x != 0)
		case row.KindReal:
			return row.Real(float64(x))
		}
		return row.Int(x)
	case float64:
		if want == row.KindInt && x == float64(int64(x)) {
			return row.Int(int64(x))
		}
		return row.Real(x)
	case bool:
		return row.Bool(x)
	case time.Time:
		return row.Time(x)
	case []byte:
		return d.convertText(string(x), want)
	case string:
		return d.convertText(x, want)
	}
	return row.Null()
}

func (d *DB) convertText(s string, want row.Kind) row.Value {
	trimmed := strings.TrimSpace(s)
	switch want {
	case row.KindTime:
		if trimmed == "" {
			return row.Null()
		}
		if t, err := time.Parse(d.dateFormat, trimmed); err == nil {
			return row.Time(t)
		}
	case row.KindInt:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return row.Int(n)
		}
	case row.KindReal:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return row.Real(f)
		}
	case row.KindBool:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return row.Bool(b)
		}
	}
	return row.Text(s)
}
