package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/session"
	"github.com/KaramelBytes/dashkit/internal/ui"
)

var (
	lsSource       string
	lsNeighborhood string
	lsFrom         string
	lsTo           string
	lsSelect       int
)

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Sold house dashboard: map points, median price over time, listings by subdivision",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := listingsPage(cmd)
		if err != nil {
			return err
		}
		if err := writeView(cmd, page, &page.Page); err != nil {
			return err
		}
		if !cmd.Flags().Changed("select") {
			return nil
		}
		sess := session.New()
		sess.Show(page.Points)
		rec, err := sess.Select(lsSelect)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n[SELECTED PROPERTY]\n%s\n", ui.RenderDetails(dashboard.PropertyDetails(rec)))
		return nil
	},
}

// listingsPage loads the listings source and applies the filter flags.
func listingsPage(cmd *cobra.Command) (*dashboard.ListingsPage, error) {
	from, err := parseDateFlag("from", lsFrom)
	if err != nil {
		return nil, err
	}
	to, err := parseDateFlag("to", lsTo)
	if err != nil {
		return nil, err
	}
	src := dataset.Source{Kind: dataset.Listings, Location: sourceOr(lsSource, cfg.ListingsSource)}
	t, err := newLoader().Load(cmd.Context(), src)
	if err != nil {
		return nil, err
	}
	f := dashboard.ListingFilter{Neighborhood: lsNeighborhood, From: from, To: to}
	if !to.IsZero() {
		// --to names a whole day
		f.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	page, err := dashboard.Listings(t, f, cfg.DashboardOptions())
	if err != nil {
		return nil, err
	}
	logger.Debug("listings: %d of %d rows have coordinates after filtering", page.Points.Len(), t.Len())
	return page, nil
}

func parseDateFlag(name, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (use YYYY-MM-DD)", name, v)
	}
	return t, nil
}

func init() {
	rootCmd.AddCommand(listingsCmd)
	listingsCmd.Flags().StringVar(&lsSource, "source", "", "listings CSV/JSONL path, URL or database (default from config)")
	listingsCmd.Flags().StringVarP(&lsNeighborhood, "neighborhood", "n", "All", "subdivision to show, or All")
	listingsCmd.Flags().StringVar(&lsFrom, "from", "", "earliest sold date, YYYY-MM-DD (default: earliest in data)")
	listingsCmd.Flags().StringVar(&lsTo, "to", "", "latest sold date, YYYY-MM-DD (default: latest in data)")
	listingsCmd.Flags().IntVar(&lsSelect, "select", 0, "print details of the property at this map row")
	addOutputFlags(listingsCmd)
}
