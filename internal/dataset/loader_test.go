package dataset

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dashkit/internal/table"
)

const listingsCSV = "zpid,latitude,longitude,abbreviatedAddress,subdivisionName,datePostedString,dateSoldString,price,description\n" +
	"1,47.61,-122.33,1 Main St,Elm Park,2021-01-01,2021-01-05,100,nice\n" +
	"2,47.62,-122.31,2 Oak Ave,Oak Hill,2021-01-02,not a date,300,roomy\n" +
	"3,47.60,-122.30,3 Pine Rd,Elm Park,2021-01-03,2021-02-01,call us,\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func cell(t *testing.T, tb *table.Table, row int, col string) table.Value {
	t.Helper()
	rec, err := tb.Row(row)
	require.NoError(t, err)
	v, err := rec.Get(col)
	require.NoError(t, err)
	return v
}

func TestLoadListingsCSV(t *testing.T) {
	p := writeFile(t, "listings.csv", listingsCSV)
	tb, err := NewLoader().Load(context.Background(), Source{Kind: Listings, Location: p})
	require.NoError(t, err)

	assert.Equal(t, ListingColumns, tb.ColumnNames())
	require.Equal(t, 3, tb.Len(), "malformed values never drop rows")

	k, _ := tb.KindOf(ColDateSold)
	assert.Equal(t, table.KindTime, k)
	k, _ = tb.KindOf(ColPrice)
	assert.Equal(t, table.KindNumber, k)

	assert.Equal(t, "2021-01-05", cell(t, tb, 0, ColDateSold).Text())
	assert.True(t, cell(t, tb, 1, ColDateSold).IsNull())
	assert.True(t, cell(t, tb, 2, ColPrice).IsNull())
	assert.Equal(t, -122.33, cell(t, tb, 0, ColLongitude).Num())
}

func TestLoadReviewsAndItemsJSONL(t *testing.T) {
	reviews := writeFile(t, "reviews.jsonl",
		`{"rating":5.0,"title":"Great","text":"Works","user_id":"u1","timestamp":1609459200000,"helpful_vote":2}`+"\n"+
			`{"rating":"n/a","user_id":"u2","timestamp":"garbage","helpful_vote":0}`+"\n")
	tb, err := NewLoader().Load(context.Background(), Source{Kind: Reviews, Location: "file://" + reviews})
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01", cell(t, tb, 0, ColTimestamp).Text())
	assert.True(t, cell(t, tb, 1, ColTimestamp).IsNull())
	assert.True(t, cell(t, tb, 1, ColRating).IsNull())
	assert.True(t, cell(t, tb, 1, ColText).IsNull(), "absent key is explicit null")

	items := writeFile(t, "items.jsonl",
		`{"main_category":"All Beauty","store":null,"average_rating":4.5,"rating_number":"12"}`+"\n"+
			`{"main_category":" Toys ","store":"None","average_rating":"x"}`+"\n")
	tb, err = NewLoader().Load(context.Background(), Source{Kind: Items, Location: items})
	require.NoError(t, err)
	assert.Equal(t, table.String("None"), cell(t, tb, 0, ColStore))
	assert.Equal(t, table.String("None"), cell(t, tb, 1, ColStore))
	assert.Equal(t, table.String("Toys"), cell(t, tb, 1, ColMainCategory))
	assert.Equal(t, 12.0, cell(t, tb, 0, ColRatingNumber).Num())
	assert.True(t, cell(t, tb, 1, ColAverageRating).IsNull())
}

func TestLoadUsersAgeBucket(t *testing.T) {
	users := writeFile(t, "users.jsonl",
		`{"user_id":"a","age":15}`+"\n"+`{"user_id":"b","age":25}`+"\n"+
			`{"user_id":"c","age":71}`+"\n"+`{"user_id":"d","age":null}`+"\n")
	tb, err := NewLoader().Load(context.Background(), Source{Kind: Users, Location: users})
	require.NoError(t, err)
	got, err := tb.Column(ColAgeBucket)
	require.NoError(t, err)
	assert.Equal(t, []table.Value{table.String("Under 20"), table.String("20-30"), table.String("Above 70"), table.Null()}, got)

	allNull := writeFile(t, "users.jsonl", `{"user_id":"a","age":null}`+"\n")
	tb, err = NewLoader().Load(context.Background(), Source{Kind: Users, Location: allNull})
	require.NoError(t, err)
	assert.False(t, tb.Has(ColAgeBucket))

	noAge := writeFile(t, "users.jsonl", `{"user_id":"a","gender":"f"}`+"\n")
	tb, err = NewLoader().Load(context.Background(), Source{Kind: Users, Location: noAge})
	require.NoError(t, err)
	assert.False(t, tb.Has(ColAgeBucket))
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	cases := map[string]Source{
		"missing file":   {Kind: Listings, Location: filepath.Join(t.TempDir(), "nope.csv")},
		"invalid json":   {Kind: Reviews, Location: writeFile(t, "r.jsonl", "{\"a\":1}\n{oops}\n")},
		"unknown format": {Kind: Generic, Location: writeFile(t, "r.parquet", "PAR1")},
		"missing column": {Kind: Listings, Location: writeFile(t, "l.csv", "a,b\n1,2\n")},
		"empty location": {Kind: Generic, Location: " "},
	}
	for name, src := range cases {
		_, err := NewLoader().Load(ctx, src)
		var le *LoadError
		require.Truef(t, errors.As(err, &le), "%s: want LoadError, got %v", name, err)
		assert.Equal(t, src.Location, le.Source)
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	body  map[string]string
	calls int
	err   error
}

func (f *fakeFetcher) Get(_ context.Context, u string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body[u]), nil
}

func TestLoadHTTPThroughCache(t *testing.T) {
	url := "https://data.example.com/dashboards/listings.csv?raw=1"
	ff := &fakeFetcher{body: map[string]string{url: listingsCSV}}
	cache := NewCache()
	l := NewLoader(WithFetcher(ff), WithCache(cache))

	var wg sync.WaitGroup
	results := make([]*table.Table, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tb, err := l.Load(context.Background(), Source{Kind: Listings, Location: url})
			assert.NoError(t, err)
			results[i] = tb
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(t, results[0], r, "every caller shares one immutable table")
	}
	st := cache.Stats()
	assert.Equal(t, 1, st.Entries)
	assert.EqualValues(t, 8, st.Hits+st.Misses)

	// a different column subset is a different cache entry
	_, err := l.Load(context.Background(), Source{Kind: Listings, Location: url, Columns: []string{ColPrice}})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Stats().Entries)
}

func TestCacheKeysOnNumberFormat(t *testing.T) {
	p := writeFile(t, "amounts.csv", "id,amount\n1,\"1,5\"\n2,\"2,5\"\n")
	cache := NewCache()
	src := Source{Kind: Generic, Location: p}

	plain, err := NewLoader(WithCache(cache)).Load(context.Background(), src)
	require.NoError(t, err)
	k, _ := plain.KindOf("amount")
	assert.Equal(t, table.KindString, k)

	comma := NewLoader(WithCache(cache), WithNumberFormat(table.NumberFormat{Decimal: ','}))
	tb, err := comma.Load(context.Background(), src)
	require.NoError(t, err)
	k, _ = tb.KindOf("amount")
	assert.Equal(t, table.KindNumber, k, "a different locale is typed afresh")
	assert.Equal(t, 1.5, cell(t, tb, 0, "amount").Num())
	assert.Equal(t, 2, cache.Stats().Entries)

	again, err := comma.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Same(t, tb, again)
}

func TestLoadHTTPFailureIsLoadError(t *testing.T) {
	ff := &fakeFetcher{err: errors.New("connection refused")}
	cache := NewCache()
	l := NewLoader(WithFetcher(ff), WithCache(cache))
	_, err := l.Load(context.Background(), Source{Kind: Reviews, Location: "http://host/reviews.jsonl"})
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Error(), "connection refused")
	assert.Equal(t, 0, cache.Stats().Entries, "failures are not cached")
}

func TestLoadSQLite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "amazon.db")
	db, err := sql.Open("sqlite", p)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (user_id TEXT, age INTEGER, gender TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users VALUES ('u1', 33, 'f'), ('u2', NULL, 'm'), ('u3', 64, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tb, err := NewLoader().Load(context.Background(), Source{Kind: Users, Location: p})
	require.NoError(t, err)
	assert.Equal(t, []string{"user_id", "age", "gender", "age_bucket"}, tb.ColumnNames())
	assert.Equal(t, table.String("30-40"), cell(t, tb, 0, ColAgeBucket))
	assert.True(t, cell(t, tb, 1, ColAgeBucket).IsNull())

	tb, err = NewLoader().Load(context.Background(), Source{Kind: Generic, Location: "sqlite://" + p + "?table=users", Columns: []string{"gender"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"gender"}, tb.ColumnNames())

	_, err = NewLoader().Load(context.Background(), Source{Kind: Generic, Location: "sqlite://" + p + "?table=nope"})
	var le *LoadError
	assert.True(t, errors.As(err, &le))
}

func TestLoadGenericInfersKinds(t *testing.T) {
	p := writeFile(t, "metrics.tsv", "when\tscore\tlabel\n2021-01-01\t1.000,5\ta\n2021-01-02\t2,25\tb\n\t\tc\n")
	l := NewLoader(WithNumberFormat(table.NumberFormat{Decimal: ',', Thousands: '.'}))
	tb, err := l.Load(context.Background(), Source{Kind: Generic, Location: p})
	require.NoError(t, err)
	kinds := map[string]table.Kind{}
	for _, c := range tb.Columns() {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, map[string]table.Kind{"when": table.KindTime, "score": table.KindNumber, "label": table.KindString}, kinds)
	assert.Equal(t, 1000.5, cell(t, tb, 0, "score").Num())
	assert.True(t, cell(t, tb, 2, "score").IsNull())
}

func TestParseKindAndLocation(t *testing.T) {
	k, err := ParseKind(" Reviews ")
	require.NoError(t, err)
	assert.Equal(t, Reviews, k)
	_, err = ParseKind("movies")
	assert.Error(t, err)

	loc, err := parseLocation("postgres://u:p@db:5432/amazon?sslmode=disable&table=reviews", Reviews)
	require.NoError(t, err)
	assert.Equal(t, schemePostgres, loc.scheme)
	assert.Equal(t, "reviews", loc.table)
	assert.NotContains(t, loc.target, "table=")
	assert.NotContains(t, loc.name, "u:p@")

	loc, err = parseLocation("/data/amazon.sqlite", Users)
	require.NoError(t, err)
	assert.Equal(t, schemeSQLite, loc.scheme)
	assert.Equal(t, "users", loc.table)
}
