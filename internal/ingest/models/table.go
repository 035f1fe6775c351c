package models

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is an upload file split into a header and data rows. Cells are
// trimmed; short rows are padded with empty cells.
type Table struct {
	Headers []string
	Rows    []Record
}

// Record is one data row keyed by raw header.
type Record struct {
	Line   int
	Values map[string]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a comma separated file whose first non-blank line is the
// header. Blank lines are skipped. A file with no header is an error.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table := &Table{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if table.Headers == nil {
			table.Headers = trimAll(record)
			continue
		}
		values := make(map[string]string, len(table.Headers))
		for i, h := range table.Headers {
			if i < len(record) {
				values[h] = strings.TrimSpace(record[i])
			} else {
				values[h] = ""
			}
		}
		table.Rows = append(table.Rows, Record{Line: line, Values: values})
	}
	if table.Headers == nil {
		return nil, errors.New("parse csv: missing header row")
	}
	return table, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimAll(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
