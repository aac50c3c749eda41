package dataset

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// Source identifies a dataset: where it lives and how to type it.
type Source struct {
	Kind     Kind
	Location string
	// Columns overrides the kind's column subset when set.
	Columns []string
}

func (s Source) String() string {
	if s.Kind == "" || s.Kind == Generic {
		return s.Location
	}
	return fmt.Sprintf("%s (%s)", s.Location, s.Kind)
}

// key identifies a source for caching: location, kind, column subset and
// the number format used to type it.
func (s Source) key(nf table.NumberFormat) string {
	cols := s.Columns
	if cols == nil {
		cols = SpecFor(s.Kind).Columns
	}
	return s.Location + "\x00" + string(s.Kind) + "\x00" + strings.Join(cols, ",") +
		"\x00" + fmt.Sprintf("%q%q", nf.Decimal, nf.Thousands)
}

type scheme int

const (
	schemeFile scheme = iota
	schemeHTTP
	schemeSQLite
	schemePostgres
)

// location is a parsed Source.Location.
type location struct {
	scheme scheme
	// path for files, URL for http, DSN for databases
	target string
	// name is what picks the parser (file name or URL path)
	name string
	// table for database sources
	table string
}

var sqliteExts = []string{".db", ".sqlite", ".sqlite3"}

func parseLocation(raw string, kind Kind) (location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return location{}, fmt.Errorf("empty location")
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		u, err := url.Parse(raw)
		if err != nil {
			return location{}, fmt.Errorf("parse url: %w", err)
		}
		return location{scheme: schemeHTTP, target: raw, name: u.Path}, nil
	case strings.HasPrefix(lower, "file://"):
		p := raw[len("file://"):]
		return fileLocation(p, kind), nil
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "sqlite:"):
		rest := raw[strings.Index(raw, ":")+1:]
		rest = strings.TrimPrefix(rest, "//")
		path, query, _ := strings.Cut(rest, "?")
		q, err := url.ParseQuery(query)
		if err != nil {
			return location{}, fmt.Errorf("parse sqlite location: %w", err)
		}
		return location{scheme: schemeSQLite, target: path, name: path, table: tableOr(q.Get("table"), kind)}, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		u, err := url.Parse(raw)
		if err != nil {
			return location{}, fmt.Errorf("parse postgres url: %w", err)
		}
		q := u.Query()
		tbl := q.Get("table")
		q.Del("table")
		u.RawQuery = q.Encode()
		return location{scheme: schemePostgres, target: u.String(), name: u.Redacted(), table: tableOr(tbl, kind)}, nil
	}
	return fileLocation(raw, kind), nil
}

func fileLocation(p string, kind Kind) location {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range sqliteExts {
		if ext == e {
			return location{scheme: schemeSQLite, target: p, name: p, table: tableOr("", kind)}
		}
	}
	return location{scheme: schemeFile, target: p, name: p}
}

func tableOr(t string, kind Kind) string {
	if t != "" {
		return t
	}
	if kind == "" {
		return string(Generic)
	}
	return string(kind)
}
