package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/table"
	"github.com/KaramelBytes/dashkit/internal/utils"
)

var (
	anaOutputPath string
	anaKind       string
	anaSampleRows int
	anaGroupBy    string
	anaCorr       bool
	anaDecimal    string
	anaThousands  string
	anaOutliers   bool
	anaOutlierThr float64
	anaCountBy    string
	anaMedian     string
	anaBy         string
	anaOver       string
	anaPeriod     string
	anaTop        int
)

// aggregations are the optional sections appended to a dataset summary.
type aggregations struct {
	CountBy, Median, By, Over string
	Period                    analysis.Granularity
	Top                       int
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <source>",
	Short: "Profile a dataset and optionally aggregate it",
	Long: `Profile a CSV, TSV, JSONL, URL or database source: column types, missing values,
numeric statistics and sample rows. --count-by, --median/--by and --over add
grouped aggregations to the summary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := dataset.ParseKind(anaKind)
		if err != nil {
			return err
		}
		nf, err := parseNumberFormat(anaDecimal, anaThousands)
		if err != nil {
			return err
		}
		period, ok := analysis.ParseGranularity(strings.ToLower(strings.TrimSpace(anaPeriod)))
		if !ok {
			return fmt.Errorf("unsupported --period: %s (use day|month|year)", anaPeriod)
		}
		if anaMedian != "" && anaBy == "" {
			return fmt.Errorf("--median requires --by")
		}
		opt := analysis.DefaultProfileOptions()
		if anaSampleRows >= 0 {
			opt.SampleRows = anaSampleRows
		}
		opt.GroupBy = anaGroupBy
		opt.Correlations = anaCorr
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = anaOutliers
		}
		if anaOutlierThr > 0 {
			opt.OutlierThreshold = anaOutlierThr
		}
		agg := aggregations{CountBy: anaCountBy, Median: anaMedian, By: anaBy, Over: anaOver, Period: period, Top: anaTop}

		loader := newLoader(dataset.WithNumberFormat(nf))
		md, err := analyzeSource(cmd.Context(), loader, dataset.Source{Kind: kind, Location: args[0]}, opt, agg)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

// analyzeSource loads src and renders its profile followed by any requested
// aggregations.
func analyzeSource(ctx context.Context, l *dataset.Loader, src dataset.Source, opt analysis.ProfileOptions, agg aggregations) (string, error) {
	t, err := l.Load(ctx, src)
	if err != nil {
		return "", err
	}
	rep, err := analysis.Describe(src.Location, t, opt)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(rep.Markdown())

	section := func(title string, g analysis.GroupResult) {
		if agg.Top > 0 {
			g = analysis.TopN(g, agg.Top)
		}
		fmt.Fprintf(&b, "\n[%s]\n", title)
		b.WriteString(g.Markdown())
	}
	if agg.CountBy != "" {
		g, err := analysis.CountByGroup(t, agg.CountBy)
		if err != nil {
			return "", err
		}
		section("COUNT BY "+strings.ToUpper(agg.CountBy), g)
	}
	if agg.Median != "" {
		var g analysis.GroupResult
		if k, kerr := t.KindOf(agg.By); kerr == nil && k == table.KindTime {
			g, err = analysis.MedianByPeriod(t, agg.By, agg.Median, agg.Period)
		} else {
			g, err = analysis.MedianByGroup(t, agg.By, agg.Median)
		}
		if err != nil {
			return "", err
		}
		section(fmt.Sprintf("MEDIAN %s BY %s", strings.ToUpper(agg.Median), strings.ToUpper(agg.By)), g)
	}
	if agg.Over != "" {
		g, err := analysis.CountOverTime(t, agg.Over, agg.Period)
		if err != nil {
			return "", err
		}
		// periods stay chronological
		fmt.Fprintf(&b, "\n[COUNT PER %s OF %s]\n", strings.ToUpper(agg.Period.String()), strings.ToUpper(agg.Over))
		b.WriteString(g.Markdown())
	}
	return b.String(), nil
}

func parseNumberFormat(decimal, thousands string) (table.NumberFormat, error) {
	var nf table.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.Decimal = ','
	case ".", "dot":
		nf.Decimal = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(strings.TrimSpace(thousands)) {
	case ",":
		nf.Thousands = ','
	case ".":
		nf.Thousands = '.'
	case "space", " ":
		nf.Thousands = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	if nf.Decimal != 0 && nf.Decimal == nf.Thousands {
		return nf, fmt.Errorf("--decimal and --thousands must differ")
	}
	return nf, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().StringVar(&anaKind, "kind", "generic", "dataset kind: generic | listings | items | reviews | users")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	analyzeCmd.Flags().StringVar(&anaThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	analyzeCmd.Flags().StringVar(&anaGroupBy, "group-by", "", "column to count rows by in the summary")
	analyzeCmd.Flags().BoolVar(&anaCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	analyzeCmd.Flags().BoolVar(&anaOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeCmd.Flags().Float64Var(&anaOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	analyzeCmd.Flags().StringVar(&anaCountBy, "count-by", "", "count rows per value of this column")
	analyzeCmd.Flags().StringVar(&anaMedian, "median", "", "median of this numeric column (requires --by)")
	analyzeCmd.Flags().StringVar(&anaBy, "by", "", "grouping column for --median; dates are grouped by --period")
	analyzeCmd.Flags().StringVar(&anaOver, "over", "", "count rows per period of this date column")
	analyzeCmd.Flags().StringVar(&anaPeriod, "period", "month", "period for date grouping: day | month | year")
	analyzeCmd.Flags().IntVar(&anaTop, "top", 0, "keep only the top N groups of --count-by and --median")
}
