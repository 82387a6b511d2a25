package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// ReadJSONTable reads a top-level JSON array of flat objects into a
// RawTable. Objects are decoded token by token so the header order follows
// first appearance of each key, the same way a CSV header fixes column
// order. Null values become empty cells; non-string scalars keep their JSON
// text form.
func ReadJSONTable(path string) (*RawTable, error) {
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

	decoder := json.NewDecoder(bufReader)
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening bracket of %s: %w", path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("read %s: expected a top-level array, got %v", path, tok)
	}

	table := &RawTable{}
	headerIdx := make(map[string]int)
	var objects []map[string]string

	for decoder.More() {
		obj, err := decodeFlatObject(decoder)
		if err != nil {
			return nil, fmt.Errorf("read %s object %d: %w", path, len(objects)+1, err)
		}
		objects = append(objects, obj.values)
		for _, key := range obj.keys {
			if _, ok := headerIdx[key]; !ok {
				headerIdx[key] = len(table.Headers)
				table.Headers = append(table.Headers, key)
			}
		}
	}

	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("read closing bracket of %s: %w", path, err)
	}

	for _, obj := range objects {
		row := make([]string, len(table.Headers))
		for key, val := range obj {
			row[headerIdx[key]] = val
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

type flatObject struct {
	keys   []string
	values map[string]string
}

// decodeFlatObject consumes one JSON object, preserving key order.
func decodeFlatObject(decoder *json.Decoder) (*flatObject, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening brace: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	obj := &flatObject{values: make(map[string]string)}
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", tok)
		}

		var raw any
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode field %s: %w", key, err)
		}
		val, err := scalarText(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}

		if _, seen := obj.values[key]; !seen {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = val
	}

	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("read closing brace: %w", err)
	}
	return obj, nil
}

func scalarText(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported nested value of type %T", v)
	}
}
