package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dashkit/internal/config"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/fetch"
	"github.com/KaramelBytes/dashkit/internal/utils"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	noCache bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = utils.NewLogger(false)
)

var rootCmd = &cobra.Command{
	Use:   "dashkit",
	Short: "dashkit: housing and Amazon review dashboards in the terminal",
	Long: `dashkit loads listing, product, review and user datasets from files, URLs or
databases, filters and aggregates them, and renders the dashboard panels as text,
Markdown, JSON, terminal plots or PNG charts.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dashkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "do not memoize loaded datasets")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	logger.SetDebug(debug)
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if noCache {
		cfg.Cache = false
	}
}

// newLoader builds a dataset loader from the effective configuration. The
// process-wide cache is shared by every loader when caching is on.
func newLoader(opts ...dataset.Option) *dataset.Loader {
	if cfg == nil {
		cfg = &cfgpkg.Global{}
	}
	base := []dataset.Option{
		dataset.WithFetcher(fetch.NewClient(cfg.FetchOptions())),
		dataset.WithLogger(logger),
	}
	if cfg.Cache {
		base = append(base, dataset.WithCache(dataset.SharedCache()))
	}
	return dataset.NewLoader(append(base, opts...)...)
}
