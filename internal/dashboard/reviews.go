package dashboard

import (
	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/chart"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/table"
)

const (
	PanelRatingCounts  = "Review Ratings Distribution"
	PanelHelpfulHist   = "Helpful Vote Distribution"
	PanelTopHelpful    = "Top Reviews with Most Helpful Votes"
	PanelReviewTerms   = "Review Text Terms"
	PanelReviewsByTime = "Reviews Over Time"
)

// reviewColumns are the columns listed for the most helpful reviews, when
// present.
var reviewColumns = []string{dataset.ColUserID, dataset.ColRating, dataset.ColText, dataset.ColHelpfulVote}

// Reviews computes the review page.
func Reviews(reviews *table.Table, opt Options) (*Page, error) {
	opt = opt.withDefaults()
	p := &Page{Title: "Amazon Review Analysis"}

	ratings, err := analysis.CountByGroup(reviews, dataset.ColRating)
	if err != nil {
		return nil, err
	}
	ratings = analysis.SortByKey(ratings)
	spec := chart.Simple(ratings)
	spec.Title = PanelRatingCounts
	p.add(groupPanel(PanelRatingCounts, ratings, spec))

	hist, err := analysis.Histogram(reviews, dataset.ColHelpfulVote, opt.HistogramBins)
	if err != nil {
		return nil, err
	}
	p.add(Panel{Name: PanelHelpfulHist, Chart: chart.FromHistogram(hist, "Distribution of Helpful Votes", "Helpful Votes", "Number of Reviews")})

	helpful, err := analysis.NLargest(reviews, dataset.ColHelpfulVote, opt.TopReviews)
	if err != nil {
		return nil, err
	}
	var cols []string
	for _, c := range reviewColumns {
		if helpful.Has(c) {
			cols = append(cols, c)
		}
	}
	helpful, err = table.Select(helpful, cols...)
	if err != nil {
		return nil, err
	}
	p.add(Panel{Name: PanelTopHelpful, Table: helpful})

	if reviews.Has(dataset.ColText) {
		terms, err := analysis.TermFrequency(reviews, dataset.ColText, opt.Terms)
		if err != nil {
			return nil, err
		}
		p.add(groupPanel(PanelReviewTerms, terms, chart.TopHorizontalBar(terms, opt.Terms, false)))
	} else {
		p.note("no %s column; review terms skipped", dataset.ColText)
	}

	if reviews.Has(dataset.ColTimestamp) {
		perPeriod, err := analysis.CountOverTime(reviews, dataset.ColTimestamp, opt.Period)
		if err != nil {
			return nil, err
		}
		p.add(groupPanel(PanelReviewsByTime, perPeriod,
			chart.LineOverTime(perPeriod, "Reviews per "+chart.Capitalize(opt.Period.String()), opt.Period.String(), "reviews")))
	}
	return p, nil
}
