package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dashkit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dashkit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "listings_source: %s\n", cfg.ListingsSource)
		fmt.Fprintf(out, "items_source: %s\n", cfg.ItemsSource)
		fmt.Fprintf(out, "reviews_source: %s\n", cfg.ReviewsSource)
		fmt.Fprintf(out, "users_source: %s\n", cfg.UsersSource)
		fmt.Fprintf(out, "cache: %t\n", cfg.Cache)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Fprintf(out, "retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Fprintf(out, "retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Fprintf(out, "rating_bins: %d\n", cfg.RatingBins)
		fmt.Fprintf(out, "min_ratings: %g\n", cfg.MinRatings)
		fmt.Fprintf(out, "terms: %d\n", cfg.Terms)
		if len(cfg.UserColumns) > 0 {
			fmt.Fprintf(out, "user_columns: %s\n", strings.Join(cfg.UserColumns, ","))
		}
		fmt.Fprintf(out, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", cfg.ChartHeight)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "listings_source":
			cfg.ListingsSource = val
		case "items_source":
			cfg.ItemsSource = val
		case "reviews_source":
			cfg.ReviewsSource = val
		case "users_source":
			cfg.UsersSource = val
		case "cache":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for cache: %v", val)
			}
			cfg.Cache = b
		case "min_ratings":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for min_ratings: %v", val)
			}
			cfg.MinRatings = f
		case "user_columns":
			var cols []string
			for _, c := range strings.Split(val, ",") {
				if c = strings.TrimSpace(c); c != "" {
					cols = append(cols, c)
				}
			}
			cfg.UserColumns = cols
		default:
			dst := intKey(cfg, key)
			if dst == nil {
				return fmt.Errorf("unknown key: %s", key)
			}
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			*dst = i
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

// intKey maps integer config keys to their fields.
func intKey(c *cfgpkg.Global, key string) *int {
	switch key {
	case "http_timeout_sec":
		return &c.HTTPTimeoutSec
	case "retry_max_attempts":
		return &c.RetryMaxAttempts
	case "retry_base_delay_ms":
		return &c.RetryBaseDelayMs
	case "retry_max_delay_ms":
		return &c.RetryMaxDelayMs
	case "top_n":
		return &c.TopN
	case "histogram_bins":
		return &c.HistogramBins
	case "rating_bins":
		return &c.RatingBins
	case "terms":
		return &c.Terms
	case "chart_width":
		return &c.ChartWidth
	case "chart_height":
		return &c.ChartHeight
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
