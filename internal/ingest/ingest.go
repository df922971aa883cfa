// Package ingest reads CAD/RMS export files into source records.
//
// CSV cells are kept as text. JSON numbers become numeric values, null
// becomes Null and nested values are kept as their JSON text. Column order
// follows the CSV header or the first appearance of each JSON key.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"cadnorm/internal/record"
)

// Format names an input encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for files whose extension is not known.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ErrNoHeader is returned for a CSV without a header row.
var ErrNoHeader = errors.New("csv has no header row")

// wrapperKeys are accepted as the array holder in a top-level JSON object.
var wrapperKeys = []string{"records", "rows", "data", "incidents"}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}

// ReadFile reads one export file.
func ReadFile(path string) ([]record.SourceRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	recs, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	return recs, nil
}

// Read decodes r in the given format.
func Read(r io.Reader, format Format) ([]record.SourceRecord, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadCSV decodes a CSV with a header row. Short rows are padded with
// Null, blank rows are skipped and repeated header names get a numeric
// suffix.
func ReadCSV(r io.Reader) ([]record.SourceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}

	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := headerColumns(header)

	var out []record.SourceRecord

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(out)+1, err)
		}

		if blankRow(row) {
			continue
		}

		values := make([]record.Value, len(columns))
		for i := range columns {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				values[i] = record.Text(row[i])
			}
		}

		out = append(out, record.NewSourceRecord(columns, values))
	}

	return out, nil
}

func headerColumns(header []string) []string {
	columns := make([]string, len(header))
	seen := map[string]int{}

	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}

		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}

		seen[strings.ToLower(h)]++
		if n := seen[strings.ToLower(h)]; n > 1 {
			h += "_" + strconv.Itoa(n)
		}

		columns[i] = h
	}

	return columns
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// ReadJSON decodes an array of objects, or an object holding such an
// array under one of the usual wrapper keys.
func ReadJSON(r io.Reader) ([]record.SourceRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	if !json.Valid(data) {
		return nil, errors.New("input is not valid json")
	}

	// JSON is valid YAML; decoding through nodes keeps key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	rows, err := rowsNode(doc.Content[0])
	if err != nil {
		return nil, err
	}

	var (
		columns []string
		known   = map[string]bool{}
		cells   = make([]map[string]record.Value, 0, len(rows.Content))
	)

	for i, obj := range rows.Content {
		if obj.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("json row %d is not an object", i)
		}

		row := make(map[string]record.Value, len(obj.Content)/2)

		for k := 0; k+1 < len(obj.Content); k += 2 {
			key := obj.Content[k].Value
			if !known[key] {
				known[key] = true
				columns = append(columns, key)
			}

			v, err := nodeValue(obj.Content[k+1])
			if err != nil {
				return nil, fmt.Errorf("json row %d key %q: %w", i, key, err)
			}

			row[key] = v
		}

		cells = append(cells, row)
	}

	out := make([]record.SourceRecord, len(cells))
	for i, row := range cells {
		out[i] = record.FromMap(columns, row)
	}

	return out, nil
}

func rowsNode(n *yaml.Node) (*yaml.Node, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		return n, nil
	case yaml.MappingNode:
		for k := 0; k+1 < len(n.Content); k += 2 {
			for _, want := range wrapperKeys {
				if strings.EqualFold(n.Content[k].Value, want) && n.Content[k+1].Kind == yaml.SequenceNode {
					return n.Content[k+1], nil
				}
			}
		}

		return nil, fmt.Errorf("json object holds no %s array", strings.Join(wrapperKeys, "/"))
	default:
		return nil, errors.New("json input must be an array of objects")
	}
}

func nodeValue(n *yaml.Node) (record.Value, error) {
	if n.Kind != yaml.ScalarNode {
		var raw any
		if err := n.Decode(&raw); err != nil {
			return record.Value{}, err
		}

		text, err := json.Marshal(raw)
		if err != nil {
			return record.Value{}, err
		}

		return record.Text(string(text)), nil
	}

	switch n.ShortTag() {
	case "!!str":
		return record.Text(n.Value), nil
	case "!!null":
		return record.Null(), nil
	}

	var raw any
	if err := n.Decode(&raw); err != nil {
		return record.Text(n.Value), nil //nolint:nilerr // keep the literal
	}

	v, err := record.FromAny(raw)
	if err != nil {
		return record.Text(n.Value), nil //nolint:nilerr // e.g. uint64 overflow
	}

	return v, nil
}
