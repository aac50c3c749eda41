package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dashkit/internal/table"
	"github.com/KaramelBytes/dashkit/internal/utils"
)

// Markdown renders the entries as a two-column table.
func (g GroupResult) Markdown() string {
	var b strings.Builder
	rows := make([][]string, len(g.Entries))
	for i, e := range g.Entries {
		rows[i] = []string{e.Label, formatMetric(e.Metric)}
	}
	writeMarkdownTable(&b, []string{g.KeyColumn, g.Metric}, rows)
	return b.String()
}

// Markdown renders the bins as a two-column table.
func (h HistogramResult) Markdown() string {
	var b strings.Builder
	rows := make([][]string, len(h.Bins))
	for i, bin := range h.Bins {
		rows[i] = []string{bin.Label(), strconv.Itoa(bin.Count)}
	}
	writeMarkdownTable(&b, []string{h.Column, "count"}, rows)
	return b.String()
}

// MarkdownTable renders up to limit rows of t. limit <= 0 renders every row.
func MarkdownTable(t *table.Table, limit int) string {
	n := t.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rec, _ := t.Row(i)
		vals := rec.Values()
		row := make([]string, len(vals))
		for j, v := range vals {
			row[j] = v.Text()
		}
		rows[i] = row
	}
	var b strings.Builder
	writeMarkdownTable(&b, t.ColumnNames(), rows)
	if n < t.Len() {
		b.WriteString(fmt.Sprintf("(%d of %d rows)\n", n, t.Len()))
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			b.WriteString(safeVal(truncate(val, 80)))
		}
		b.WriteString(" |\n")
	}
}

func formatMetric(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func truncate(s string, n int) string { return utils.Truncate(s, n) }

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
