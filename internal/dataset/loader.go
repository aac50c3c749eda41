package dataset

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/KaramelBytes/dashkit/internal/fetch"
	"github.com/KaramelBytes/dashkit/internal/parser"
	"github.com/KaramelBytes/dashkit/internal/table"
	"github.com/KaramelBytes/dashkit/internal/utils"
)

// Fetcher downloads a URL. *fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Loader turns Sources into typed tables, optionally through a Cache.
type Loader struct {
	fetcher Fetcher
	cache   *Cache
	log     *utils.Logger
	numbers table.NumberFormat
}

// Option configures a Loader.
type Option func(*Loader)

// WithFetcher sets the client used for http(s) sources.
func WithFetcher(f Fetcher) Option { return func(l *Loader) { l.fetcher = f } }

// WithCache memoizes loads in c. Without it every Load reads the source.
func WithCache(c *Cache) Option { return func(l *Loader) { l.cache = c } }

// WithLogger sets the diagnostics logger.
func WithLogger(log *utils.Logger) Option { return func(l *Loader) { l.log = log } }

// WithNumberFormat sets the locale separators used when inferring generic
// numeric columns.
func WithNumberFormat(nf table.NumberFormat) Option { return func(l *Loader) { l.numbers = nf } }

// NewLoader builds a Loader. By default it fetches with fetch.DefaultOptions
// and does not cache.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{log: utils.Nop()}
	for _, o := range opts {
		o(l)
	}
	if l.fetcher == nil {
		l.fetcher = fetch.NewClient(fetch.DefaultOptions())
	}
	return l
}

// Cache returns the loader's cache, or nil.
func (l *Loader) Cache() *Cache { return l.cache }

// Load reads and types src. Any failure to open or parse the source is
// returned as a *LoadError.
func (l *Loader) Load(ctx context.Context, src Source) (*table.Table, error) {
	if src.Kind == "" {
		src.Kind = Generic
	}
	if l.cache == nil {
		return l.load(ctx, src)
	}
	t, hit, err := l.cache.GetOrLoad(src.key(l.numbers), func() (*table.Table, error) { return l.load(ctx, src) })
	if err != nil {
		return nil, err
	}
	if hit {
		l.log.Debug("cache hit: %s", src)
	}
	return t, nil
}

func (l *Loader) load(ctx context.Context, src Source) (*table.Table, error) {
	start := time.Now()
	spec := SpecFor(src.Kind)
	cols := spec.Columns
	if src.Columns != nil {
		cols = src.Columns
	}
	loc, err := parseLocation(src.Location, src.Kind)
	if err != nil {
		return nil, &LoadError{Source: src.Location, Err: err}
	}

	var raw *table.Table
	switch loc.scheme {
	case schemeHTTP:
		body, ferr := l.fetcher.Get(ctx, loc.target)
		if ferr != nil {
			return nil, &LoadError{Source: src.Location, Err: ferr}
		}
		raw, err = parser.Parse(loc.name, bytes.NewReader(body), parser.Options{Columns: cols})
	case schemeSQLite:
		if _, serr := os.Stat(loc.target); serr != nil {
			return nil, &LoadError{Source: src.Location, Err: serr}
		}
		raw, err = readSQL(ctx, "sqlite", loc.target, loc.table, cols)
	case schemePostgres:
		raw, err = readSQL(ctx, "postgres", loc.target, loc.table, cols)
	default:
		raw, err = parser.ParseFile(loc.target, parser.Options{Columns: cols})
	}
	if err != nil {
		return nil, &LoadError{Source: src.Location, Err: err}
	}

	t := applySpec(raw, spec, l.numbers)
	l.log.Debug("loaded %s: %d rows, %d columns in %s", src, t.Len(), len(t.Columns()), time.Since(start).Round(time.Millisecond))
	return t, nil
}

// LoadAll loads several sources in order, stopping at the first failure.
func (l *Loader) LoadAll(ctx context.Context, srcs ...Source) ([]*table.Table, error) {
	out := make([]*table.Table, len(srcs))
	for i, s := range srcs {
		t, err := l.Load(ctx, s)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
