package analysis

import (
	"github.com/KaramelBytes/dashkit/internal/table"
	"github.com/KaramelBytes/dashkit/internal/utils"
)

// minTermLen drops one and two letter fragments from term counts.
const minTermLen = 3

// TermFrequency counts lowercase words across the text values of col, with
// stop words and short tokens removed, and keeps the n most frequent. Ties
// keep first-seen order. n <= 0 keeps every term.
func TermFrequency(t *table.Table, col string, n int) (GroupResult, error) {
	vals, err := t.Column(col)
	if err != nil {
		return GroupResult{}, err
	}
	res := GroupResult{KeyColumn: col, Metric: "count"}
	pos := map[string]int{}
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		for _, w := range utils.Words(v.Text()) {
			if len(w) < minTermLen || utils.IsStopWord(w) {
				continue
			}
			i, ok := pos[w]
			if !ok {
				i = len(res.Entries)
				pos[w] = i
				res.Entries = append(res.Entries, Entry{Key: table.String(w), Label: w})
			}
			res.Entries[i].Metric++
		}
	}
	sortByMetricDesc(res.Entries)
	if n > 0 && n < len(res.Entries) {
		res.Entries = res.Entries[:n]
	}
	return res, nil
}
