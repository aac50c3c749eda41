package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/session"
	"github.com/KaramelBytes/dashkit/internal/table"
	"github.com/KaramelBytes/dashkit/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse sold properties interactively and inspect their details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := listingsPage(cmd)
		if err != nil {
			return err
		}
		if page.Points.Len() == 0 {
			return fmt.Errorf("no sold properties with coordinates match the filter")
		}
		sess := session.New()
		m := ui.NewModel(sess, page.Points, ui.Options{
			Title:     fmt.Sprintf("%s (%s)", dashboard.PanelSoldMap, page.Filter.Neighborhood),
			ItemTitle: listingTitle,
			ItemDesc:  listingDesc,
			Details:   dashboard.PropertyDetails,
		})
		if err := ui.Run(m); err != nil {
			return err
		}
		if rec, ok := sess.CurrentSelection(); ok {
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderDetails(dashboard.PropertyDetails(rec)))
		}
		return nil
	},
}

func field(rec table.Record, col string) string {
	v, err := rec.Get(col)
	if err != nil || v.IsNull() {
		return ""
	}
	return v.Text()
}

func listingTitle(rec table.Record) string {
	if a := field(rec, dataset.ColAddress); a != "" {
		return a
	}
	return "(no address)"
}

func listingDesc(rec table.Record) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{field(rec, dataset.ColSubdivision), field(rec, dataset.ColPrice), field(rec, dataset.ColDateSold)} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}

func init() {
	rootCmd.AddCommand(browseCmd)
	// shares the listings filter flags
	browseCmd.Flags().StringVar(&lsSource, "source", "", "listings CSV/JSONL path, URL or database (default from config)")
	browseCmd.Flags().StringVarP(&lsNeighborhood, "neighborhood", "n", "All", "subdivision to show, or All")
	browseCmd.Flags().StringVar(&lsFrom, "from", "", "earliest sold date, YYYY-MM-DD")
	browseCmd.Flags().StringVar(&lsTo, "to", "", "latest sold date, YYYY-MM-DD")
}
