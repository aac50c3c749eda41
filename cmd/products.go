package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/dataset"
)

var prSource string

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Product dashboard: top stores, rating histogram, categories and title terms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src := dataset.Source{Kind: dataset.Items, Location: sourceOr(prSource, cfg.ItemsSource)}
		items, err := newLoader().Load(cmd.Context(), src)
		if err != nil {
			return err
		}
		page, err := dashboard.Products(items, cfg.DashboardOptions())
		if err != nil {
			return err
		}
		return writePage(cmd, page)
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.Flags().StringVar(&prSource, "source", "", "item metadata JSONL/CSV path, URL or database (default from config)")
	addOutputFlags(productsCmd)
}
