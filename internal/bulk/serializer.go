package bulk

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// sentinelPattern matches textual null placeholders, case-insensitively
// and with surrounding whitespace. Matching fields become empty strings
// so COPY loads them as NULL-equivalent empties rather than junk text.
var sentinelPattern = regexp.MustCompile(`(?i)^\s*(''|nan|n/a|null|nat)\s*$`)

// SanitizeField converts one scalar value into its wire form. In order:
// nil becomes empty; the value is stringified canonically; embedded
// double quotes are doubled (CSV escape); whitespace is trimmed;
// sentinel placeholders become empty; the result is lowercased; literal
// newlines and carriage returns are stripped so they cannot break row
// framing.
//
// Lowercasing is deliberate: all bulk-loaded text is case-folded and
// downstream consumers depend on it.
func SanitizeField(v any) string {
	if v == nil {
		return ""
	}

	s := strings.ReplaceAll(stringify(v), `"`, `""`)
	s = strings.TrimSpace(s)
	if sentinelPattern.MatchString(s) {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, "\r", "")
}

// stringify renders a value in canonical string form.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Serialize transposes a chunk's columns into rows and renders the
// pipe-delimited payload for one COPY operation: fields joined with
// '|', rows joined with '\n', no trailing newline.
func Serialize(c pgbulk.Chunk) (string, error) {
	if len(c.Columns) == 0 {
		return "", fmt.Errorf("chunk %d has no columns: %w", c.Index, pgbulk.ErrSerialization)
	}

	rows := len(c.Columns[0].Values)
	for _, col := range c.Columns[1:] {
		if len(col.Values) != rows {
			return "", fmt.Errorf("chunk %d: column %q has %d values, want %d: %w",
				c.Index, col.Name, len(col.Values), rows, pgbulk.ErrSerialization)
		}
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for i, col := range c.Columns {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString(SanitizeField(col.Values[r]))
		}
	}

	return b.String(), nil
}

// ColumnList renders the column list for the COPY statement. The
// identifier "order" collides with a reserved word in PostgreSQL's
// grammar and is rendered quoted; other reserved-word collisions are
// not handled.
func ColumnList(c pgbulk.Chunk) string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		if col.Name == "order" {
			names[i] = `"order"`
		} else {
			names[i] = col.Name
		}
	}
	return strings.Join(names, ", ")
}
