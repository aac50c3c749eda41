package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// maxLineBytes bounds a single JSON line. Review texts can run long.
const maxLineBytes = 16 * 1024 * 1024

type jsonlParser struct{}

func (jsonlParser) Name() string { return "jsonl" }

func (jsonlParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".ndjson") || strings.HasSuffix(name, ".json")
}

// Parse reads one JSON object per non-blank line. Columns are the union of
// keys in first-seen order and absent keys are null. A malformed line fails
// the whole parse.
func (jsonlParser) Parse(in io.Reader, opt Options) (*table.Table, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var header []string
	pos := map[string]int{}
	var objs []map[int]table.Value
	for line := 1; sc.Scan(); line++ {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		if line == 1 {
			b = bytes.TrimPrefix(b, []byte("\ufeff"))
		}
		keys, vals, err := decodeObject(b)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		obj := make(map[int]table.Value, len(keys))
		for i, k := range keys {
			p, ok := pos[k]
			if !ok {
				p = len(header)
				pos[k] = p
				header = append(header, k)
			}
			obj[p] = vals[i]
		}
		objs = append(objs, obj)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	idx, names, err := project(header, opt.Columns)
	if err != nil {
		return nil, err
	}
	schema, err := schemaOf(names, table.KindMixed)
	if err != nil {
		return nil, err
	}
	rows := make([][]table.Value, len(objs))
	for i, obj := range objs {
		row := make([]table.Value, len(idx))
		for j, src := range idx {
			row[j] = obj[src]
		}
		rows[i] = row
	}
	return table.New(schema, rows)
}

// decodeObject decodes a single JSON object, keeping key order. A repeated
// key keeps its first position and its last value.
func decodeObject(b []byte) ([]string, []table.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("invalid json: expected an object")
	}
	var keys []string
	var vals []table.Value
	seen := map[string]int{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid json: %w", err)
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("invalid json: %w", err)
		}
		v, err := rawValue(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid json: field %q: %w", key, err)
		}
		if i, dup := seen[key]; dup {
			vals[i] = v
			continue
		}
		seen[key] = len(keys)
		keys = append(keys, key)
		vals = append(vals, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("invalid json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("invalid json: trailing data after object")
	}
	return keys, vals, nil
}

func rawValue(raw json.RawMessage) (table.Value, error) {
	if len(raw) == 0 {
		return table.Null(), nil
	}
	switch raw[0] {
	case 'n':
		return table.Null(), nil
	case 't', 'f':
		return table.String(string(raw)), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return table.Value{}, err
		}
		return table.String(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return table.Value{}, err
		}
		return table.String(buf.String()), nil
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return table.Value{}, err
		}
		return table.Number(f), nil
	}
}
