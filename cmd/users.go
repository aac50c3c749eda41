package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/dataset"
)

var (
	usReviews string
	usUsers   string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User profile dashboard: reviews joined to users by user_id, charted by demographic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := newLoader().LoadAll(cmd.Context(),
			dataset.Source{Kind: dataset.Reviews, Location: sourceOr(usReviews, cfg.ReviewsSource)},
			dataset.Source{Kind: dataset.Users, Location: sourceOr(usUsers, cfg.UsersSource)},
		)
		if err != nil {
			return err
		}
		page, err := dashboard.Users(tables[0], tables[1], cfg.DashboardOptions())
		if err != nil {
			return err
		}
		logger.Debug("users: %d of %d reviews matched a user", page.Matched, page.Joined.Len())
		return writePage(cmd, &page.Page)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.Flags().StringVar(&usReviews, "reviews", "", "review source (default from config)")
	usersCmd.Flags().StringVar(&usUsers, "users", "", "user source (default from config)")
	addOutputFlags(usersCmd)
}
