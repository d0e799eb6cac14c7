package bulk

import (
	"fmt"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// CopyStatement builds the bulk-load directive for one chunk. The
// format options must match the serializer's framing exactly: '|' as
// delimiter, '"' as both quote and escape character.
func CopyStatement(target pgbulk.Target, columnList string) string {
	return fmt.Sprintf(
		`COPY %s.%s (%s) FROM STDIN WITH (FORMAT CSV, DELIMITER '|', QUOTE '"', ESCAPE '"')`,
		target.Schema, target.Table, columnList,
	)
}
