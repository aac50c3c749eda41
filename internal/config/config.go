package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/fetch"
)

// EnvPrefix prefixes every environment override, e.g. DASHKIT_TOP_N.
const EnvPrefix = "DASHKIT"

// Global configuration structure.
type Global struct {
	// Dataset locations: a path, file:// or http(s) URL, or a database DSN.
	ListingsSource string `mapstructure:"listings_source" yaml:"listings_source"`
	ItemsSource    string `mapstructure:"items_source" yaml:"items_source"`
	ReviewsSource  string `mapstructure:"reviews_source" yaml:"reviews_source"`
	UsersSource    string `mapstructure:"users_source" yaml:"users_source"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Cache memoizes loaded datasets for the life of the process.
	Cache bool `mapstructure:"cache" yaml:"cache"`

	// Dashboard tuning
	TopN          int      `mapstructure:"top_n" yaml:"top_n"`
	HistogramBins int      `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	RatingBins    int      `mapstructure:"rating_bins" yaml:"rating_bins"`
	MinRatings    float64  `mapstructure:"min_ratings" yaml:"min_ratings"`
	Terms         int      `mapstructure:"terms" yaml:"terms"`
	UserColumns   []string `mapstructure:"user_columns" yaml:"user_columns"`

	// Chart output
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
}

// DefaultPath is ~/.dashkit/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dashkit", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dashkit/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults. A .env file in the
// working directory is read first so its values act as environment.
// Precedence: env > config file > defaults. An explicit cfgFile must exist.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	d := dashboard.DefaultOptions()
	f := fetch.DefaultOptions()
	v.SetDefault("listings_source", "data/listings.csv")
	v.SetDefault("items_source", "data/output_data_item.jsonl")
	v.SetDefault("reviews_source", "data/output_data_review.jsonl")
	v.SetDefault("users_source", "data/output_data_user.jsonl")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", int(f.Timeout/time.Second))
	v.SetDefault("retry_max_attempts", f.MaxAttempts)
	v.SetDefault("retry_base_delay_ms", int(f.BaseDelay/time.Millisecond))
	v.SetDefault("retry_max_delay_ms", int(f.MaxDelay/time.Millisecond))
	v.SetDefault("cache", true)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("rating_bins", d.RatingBins)
	v.SetDefault("min_ratings", d.MinRatings)
	v.SetDefault("terms", d.Terms)
	v.SetDefault("user_columns", d.UserColumns)
	v.SetDefault("chart_width", 1024)
	v.SetDefault("chart_height", 512)
}

// FetchOptions converts the HTTP settings for fetch.NewClient. Unset or
// non-positive values keep the fetch defaults.
func (c *Global) FetchOptions() fetch.Options {
	o := fetch.DefaultOptions()
	if c.HTTPTimeoutSec > 0 {
		o.Timeout = time.Duration(c.HTTPTimeoutSec) * time.Second
	}
	if c.RetryMaxAttempts > 0 {
		o.MaxAttempts = c.RetryMaxAttempts
	}
	if c.RetryBaseDelayMs > 0 {
		o.BaseDelay = time.Duration(c.RetryBaseDelayMs) * time.Millisecond
	}
	if c.RetryMaxDelayMs > 0 {
		o.MaxDelay = time.Duration(c.RetryMaxDelayMs) * time.Millisecond
	}
	return o
}

// DashboardOptions converts the tuning keys for the dashboard pages.
func (c *Global) DashboardOptions() dashboard.Options {
	o := dashboard.DefaultOptions()
	if c.TopN > 0 {
		o.TopN = c.TopN
	}
	if c.HistogramBins > 0 {
		o.HistogramBins = c.HistogramBins
	}
	if c.RatingBins > 0 {
		o.RatingBins = c.RatingBins
	}
	if c.MinRatings > 0 {
		o.MinRatings = c.MinRatings
	}
	if c.Terms > 0 {
		o.Terms = c.Terms
	}
	if len(c.UserColumns) > 0 {
		o.UserColumns = c.UserColumns
	}
	return o
}
