// Package dataset reads record files: a JSON array of objects, JSON Lines,
// or a YAML sequence of mappings. Values are returned undecoded; a schema
// (or ir.NewRecord) turns them into records.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a dataset file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported dataset extension %q: want .json, .jsonl, .ndjson, .yaml or .yml", filepath.Ext(path))
	}
}

// Load reads the dataset at path.
func Load(path string) ([]map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	rows, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Parse decodes data in the given format. JSON numbers are kept as
// json.Number so integers survive. An empty document yields no rows.
func Parse(data []byte, format Format) ([]map[string]any, error) {
	rows := []map[string]any{}
	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return rows, nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("parse JSON dataset: want an array of objects: %w", err)
		}
	case FormatJSONL:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		for line := 1; ; line++ {
			var row map[string]any
			err := dec.Decode(&row)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("parse JSON Lines dataset: record %d: %w", line-1, err)
			}
			rows = append(rows, row)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parse YAML dataset: want a sequence of mappings: %w", err)
		}
		if rows == nil {
			rows = []map[string]any{}
		}
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}

	for i, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("record %d: not an object", i)
		}
	}
	return rows, nil
}
