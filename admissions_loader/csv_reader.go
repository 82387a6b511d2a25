package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadTable dispatches on the file extension and reads the whole source
// into a RawTable. The pipeline is batch-oriented: one file, one run.
func ReadTable(path string) (*RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVTable(path)
	case ".json":
		return ReadJSONTable(path)
	default:
		return nil, fmt.Errorf("read %s: unsupported file extension (want .csv or .json)", path)
	}
}

// ReadCSVTable reads a CSV file into a RawTable. The first row is the
// header; short data rows are padded with empty cells and long rows are
// truncated so every row matches the header width.
func ReadCSVTable(path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row of %s: %w", path, err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	table := &RawTable{Headers: headers}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", path, len(table.Rows)+2, err)
		}

		// Skip fully empty rows
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}

		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		} else if len(row) > len(headers) {
			row = row[:len(headers)]
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
