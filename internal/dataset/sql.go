package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// readSQL reads every row of one table. Column values keep the driver's
// type: integers and floats become numbers, timestamps become times and
// everything else becomes text.
func readSQL(ctx context.Context, driver, dsn, tbl string, cols []string) (*table.Table, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	sel := "*"
	if len(cols) > 0 {
		quoted := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = quoteIdent(c)
		}
		sel = strings.Join(quoted, ", ")
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s", sel, quoteIdent(tbl)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tbl, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	schemaCols := make([]table.Column, len(names))
	for i, n := range names {
		schemaCols[i] = table.Column{Name: n, Kind: table.KindMixed}
	}
	schema, err := table.NewSchema(schemaCols...)
	if err != nil {
		return nil, err
	}

	var out [][]table.Value
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out)+1, err)
		}
		row := make([]table.Value, len(names))
		for i, v := range vals {
			row[i] = sqlValue(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return table.New(schema, out)
}

func sqlValue(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return table.Null()
	case int64:
		return table.Number(float64(x))
	case float64:
		return table.Number(x)
	case bool:
		if x {
			return table.String("true")
		}
		return table.String("false")
	case []byte:
		return table.String(string(x))
	case string:
		return table.String(x)
	case time.Time:
		return table.Time(x.UTC())
	default:
		return table.String(fmt.Sprint(x))
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
