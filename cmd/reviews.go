package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/dataset"
)

var rvSource string

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Review dashboard: rating distribution, helpful votes, review terms and reviews over time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src := dataset.Source{Kind: dataset.Reviews, Location: sourceOr(rvSource, cfg.ReviewsSource)}
		reviews, err := newLoader().Load(cmd.Context(), src)
		if err != nil {
			return err
		}
		page, err := dashboard.Reviews(reviews, cfg.DashboardOptions())
		if err != nil {
			return err
		}
		return writePage(cmd, page)
	},
}

func init() {
	rootCmd.AddCommand(reviewsCmd)
	reviewsCmd.Flags().StringVar(&rvSource, "source", "", "review JSONL/CSV path, URL or database (default from config)")
	addOutputFlags(reviewsCmd)
}
