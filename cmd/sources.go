package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/dataset"
)

var srcCheck bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured dataset sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		srcs := []dataset.Source{
			{Kind: dataset.Listings, Location: cfg.ListingsSource},
			{Kind: dataset.Items, Location: cfg.ItemsSource},
			{Kind: dataset.Reviews, Location: cfg.ReviewsSource},
			{Kind: dataset.Users, Location: cfg.UsersSource},
		}
		l := newLoader()
		failed := 0
		for _, s := range srcs {
			if !srcCheck {
				fmt.Fprintf(out, "- %s: %s\n", s.Kind, s.Location)
				continue
			}
			t, err := l.Load(cmd.Context(), s)
			if err != nil {
				failed++
				fmt.Fprintf(out, "✗ %s: %v\n", s.Kind, err)
				continue
			}
			fmt.Fprintf(out, "✓ %s: %s (%d rows, %d columns)\n", s.Kind, s.Location, t.Len(), len(t.Columns()))
		}
		if c := l.Cache(); c != nil && srcCheck {
			st := c.Stats()
			logger.Debug("cache: %d entries, %d hits, %d misses", st.Entries, st.Hits, st.Misses)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sources failed to load", failed, len(srcs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().BoolVar(&srcCheck, "check", false, "load each source and report its size")
}
