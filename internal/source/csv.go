// Package source reads tabular input files into the column-oriented
// table representation the loader consumes. The first source format is
// CSV; the package boundary keeps additional formats (Parquet, JSON
// Lines) from leaking parser details into the load pipeline.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// ReadCSVFile reads a CSV file into a Table. The first record is the
// header and supplies the column names; every following record becomes
// one row. Empty fields are represented as nil so they render as empty
// payload fields downstream.
func ReadCSVFile(path string) (*pgbulk.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// ReadCSV reads CSV data from r into a Table. See ReadCSVFile for the
// header and empty-field conventions.
func ReadCSV(r io.Reader) (*pgbulk.Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("source is empty, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("header row has no columns")
	}

	values := make([][]any, len(header))
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row+2, err)
		}

		for i, field := range record {
			if field == "" {
				values[i] = append(values[i], nil)
			} else {
				values[i] = append(values[i], field)
			}
		}
		row++
	}

	table := &pgbulk.Table{}
	for i, name := range header {
		if values[i] == nil {
			values[i] = []any{}
		}
		table.AddColumn(name, values[i])
	}
	return table, nil
}
