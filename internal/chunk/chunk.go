// Package chunk splits a columnar table into fixed-size row chunks.
package chunk

import (
	"fmt"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Split slices table into chunks of at most size rows each. The last
// chunk may be shorter. Column order and names are preserved exactly;
// chunk value slices alias the table's backing arrays and must be
// treated as read-only.
//
// Split is a pure function: no I/O, no mutation of the input.
func Split(table *pgbulk.Table, size int) ([]pgbulk.Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", size, pgbulk.ErrChunking)
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("table has no columns: %w", pgbulk.ErrChunking)
	}

	rows := len(table.Columns[0].Values)
	for _, col := range table.Columns[1:] {
		if len(col.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d: %w",
				col.Name, len(col.Values), rows, pgbulk.ErrChunking)
		}
	}

	chunks := make([]pgbulk.Chunk, 0, (rows+size-1)/size)
	for start := 0; start < rows; start += size {
		end := min(start+size, rows)

		cols := make([]pgbulk.Column, len(table.Columns))
		for i, col := range table.Columns {
			cols[i] = pgbulk.Column{Name: col.Name, Values: col.Values[start:end]}
		}

		chunks = append(chunks, pgbulk.Chunk{Index: len(chunks), Columns: cols})
	}

	return chunks, nil
}
