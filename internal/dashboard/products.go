package dashboard

import (
	"fmt"

	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/chart"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/table"
)

const (
	PanelTopStores     = "Top Stores by Rating Number"
	PanelRatingHist    = "Distribution of Average Rating"
	PanelTitleTerms    = "Top Title Terms"
	PanelCategoryCount = "Products by Main Category"
)

// Products computes the product page from the items table.
func Products(items *table.Table, opt Options) (*Page, error) {
	opt = opt.withDefaults()
	p := &Page{Title: "Amazon Product Analysis"}

	named, err := table.FilterNotEqual(items, dataset.ColStore, table.NoneLabel)
	if err != nil {
		return nil, err
	}
	stores, err := analysis.CountByGroup(named, dataset.ColStore)
	if err != nil {
		return nil, err
	}
	top := analysis.TopN(stores, opt.TopN)
	spec := chart.VerticalBar(top, true)
	spec.Title = fmt.Sprintf("Top %d Stores by Rating Number", top.Len())
	p.add(groupPanel(PanelTopStores, top, spec))

	popular, err := table.FilterGreater(items, dataset.ColRatingNumber, opt.MinRatings)
	if err != nil {
		return nil, err
	}
	hist, err := analysis.Histogram(popular, dataset.ColAverageRating, opt.RatingBins)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Distribution of Average Rating for Products with Rating Number > %g", opt.MinRatings)
	p.add(Panel{Name: PanelRatingHist, Chart: chart.FromHistogram(hist, title, "average_rating", "count")})

	if items.Has(dataset.ColMainCategory) {
		cats, err := analysis.CountByGroup(items, dataset.ColMainCategory)
		if err != nil {
			return nil, err
		}
		p.add(groupPanel(PanelCategoryCount, cats, chart.Donut(cats)))
	}

	if !items.Has(dataset.ColTitle) {
		p.note("no %s column; title terms skipped", dataset.ColTitle)
		return p, nil
	}
	mostRated, err := analysis.NLargest(items, dataset.ColRatingNumber, opt.TitleSample)
	if err != nil {
		return nil, err
	}
	terms, err := analysis.TermFrequency(mostRated, dataset.ColTitle, opt.Terms)
	if err != nil {
		return nil, err
	}
	spec = chart.TopHorizontalBar(terms, opt.Terms, false)
	spec.Title = fmt.Sprintf("Top Terms in the %d Most Rated Titles", mostRated.Len())
	p.add(groupPanel(PanelTitleTerms, terms, spec))
	return p, nil
}
