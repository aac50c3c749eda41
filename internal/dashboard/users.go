package dashboard

import (
	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/chart"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/table"
)

// UsersPage is the reviewer demographics dashboard. Every panel counts
// reviews, so a user who left three reviews counts three times.
type UsersPage struct {
	Page
	// Joined is reviews left-joined with users on user_id.
	Joined *table.Table
	// Matched is how many reviews found their user.
	Matched int
}

// Users computes the demographics page over the reviewer population.
func Users(reviews, users *table.Table, opt Options) (*UsersPage, error) {
	opt = opt.withDefaults()
	joined, err := table.LeftJoin(reviews, users, dataset.ColUserID)
	if err != nil {
		return nil, err
	}
	p := &UsersPage{Page: Page{Title: "Amazon All Beauty Category Analysis: User Profile"}, Joined: joined}
	if p.Matched, err = matchedRows(reviews, users); err != nil {
		return nil, err
	}
	if p.Matched < joined.Len() {
		p.note("%d of %d reviews have no matching user", joined.Len()-p.Matched, joined.Len())
	}

	for _, col := range opt.UserColumns {
		if !joined.Has(col) {
			p.note("no %s column; panel skipped", col)
			continue
		}
		g, err := analysis.CountByGroup(joined, col)
		if err != nil {
			return nil, err
		}
		var spec *chart.Spec
		switch {
		case col == dataset.ColAgeBucket:
			g = byAgeBucket(g)
			spec = chart.VerticalBar(g, true)
			spec.Order = chart.AsGiven
		case g.Len() <= opt.DonutMax:
			spec = chart.Donut(g)
		default:
			g = analysis.TopN(g, opt.TopN)
			spec = chart.TopHorizontalBar(g, opt.TopN, true)
		}
		p.add(groupPanel(spec.Title, g, spec))
	}
	return p, nil
}

// matchedRows counts reviews whose user_id names a row in users, keyed the
// way LeftJoin matches. A user whose other columns are all null still counts.
func matchedRows(reviews, users *table.Table) (int, error) {
	ids, err := users.Column(dataset.ColUserID)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		if !v.IsNull() {
			known[v.Text()] = struct{}{}
		}
	}
	keys, err := reviews.Column(dataset.ColUserID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range keys {
		if v.IsNull() {
			continue
		}
		if _, ok := known[v.Text()]; ok {
			n++
		}
	}
	return n, nil
}

// byAgeBucket puts age buckets in age order instead of count order.
func byAgeBucket(g analysis.GroupResult) analysis.GroupResult {
	rank := make(map[string]int, len(table.AgeBuckets))
	for i, b := range table.AgeBuckets {
		rank[b.Label] = i
	}
	out := g
	out.Entries = make([]analysis.Entry, 0, len(g.Entries))
	for _, b := range table.AgeBuckets {
		for _, e := range g.Entries {
			if e.Label == b.Label {
				out.Entries = append(out.Entries, e)
			}
		}
	}
	for _, e := range g.Entries {
		if _, ok := rank[e.Label]; !ok {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}
